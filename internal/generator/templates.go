package generator

import (
	"context"

	"github.com/netlure/decoy/internal/extract"
	"github.com/netlure/decoy/internal/session"
	"github.com/netlure/decoy/internal/signals"
)

// kindQuestions solicit a specific identifier kind in-character.
var kindQuestions = map[extract.Kind]string{
	extract.KindPaymentHandle: "I want to do this properly — what is your UPI or Google Pay id?",
	extract.KindBankAccount:   "My son usually does transfers for me. Can you give me the account number to send to?",
	extract.KindRoutingCode:   "The bank clerk is asking for an IFSC or routing code. What should I tell him?",
	extract.KindPhone:         "Typing is hard for me. What number can I call you or WhatsApp you on?",
	extract.KindURL:           "Is there a website or link where I can see the details first?",
}

var openingPool = []string{
	"Oh my, I was not expecting this message. Who is this please?",
	"I am sorry, I am a bit slow with this phone. Can you explain again?",
	"Hello, yes I got your message. What is this regarding?",
	"My grandson set up this phone for me. How did you get my number?",
}

var pressurePool = []string{
	"That sounds serious. But how do I know this is really official?",
	"I want to cooperate, I just get confused with these things. Can you go slowly?",
	"I tried what you said but the screen showed an error. What do I do now?",
	"Please give me a moment, I need to find my reading glasses.",
}

var soothePool = []string{
	"Please don't be upset with me, I am trying my best to follow along.",
	"I am sorry, I did not mean to make you wait. I am doing it now, slowly.",
}

var stallPool = []string{
	"I understand it is urgent, but the bank here closes at lunch. Give me a little time?",
	"I will do it today, I promise. The internet in my building keeps dropping.",
}

// TemplateGenerator produces deterministic in-persona candidates from fixed
// pools. Selection is keyed by turn count so repeated turns never repeat the
// previous line, and there is no randomness.
type TemplateGenerator struct{}

func NewTemplateGenerator() *TemplateGenerator {
	return &TemplateGenerator{}
}

func (g *TemplateGenerator) Generate(ctx context.Context, snap Snapshot) (string, error) {
	// Strategy recommendations override phase defaults.
	switch snap.Signals.Strategy {
	case signals.StrategySoothe:
		return pick(soothePool, snap.TurnCount), nil
	case signals.StrategyStall:
		return pick(stallPool, snap.TurnCount), nil
	}

	switch snap.Phase {
	case session.PhaseOpening:
		return pick(openingPool, snap.TurnCount), nil
	case session.PhasePressureTest:
		// Alternate between stalling lines and an early extraction probe.
		if snap.TurnCount%2 == 0 && len(snap.MissingKinds) > 0 {
			return kindQuestions[snap.MissingKinds[0]], nil
		}
		return pick(pressurePool, snap.TurnCount), nil
	default:
		if len(snap.MissingKinds) > 0 {
			return kindQuestions[snap.MissingKinds[snap.TurnCount%len(snap.MissingKinds)]], nil
		}
		return "I have written everything down. Let me go to the bank and I will message you after, alright?", nil
	}
}

// Fallback is the deterministic templated reply used when every generator
// fails or times out. The counterpart never sees an internal failure.
func Fallback(phase session.Phase) string {
	switch phase {
	case session.PhaseOpening:
		return "Sorry, this phone is very slow today. Can you tell me once more?"
	case session.PhasePressureTest:
		return "I hear you. I am writing it all down, please bear with me a moment."
	default:
		return "I am at the bank branch now, the line is long. What were the details again?"
	}
}

func pick(pool []string, turn int) string {
	if len(pool) == 0 {
		return ""
	}
	return pool[turn%len(pool)]
}
