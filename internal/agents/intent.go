package agents

import (
	"fmt"

	"github.com/talgya/curious-world/internal/world"
)

// IntentKind enumerates what an entity can ask for in a tick.
type IntentKind uint8

const (
	IntentIdle IntentKind = iota
	IntentMove
	IntentEat
	IntentDrink
	IntentMate
	IntentAttack
	IntentFlee
	IntentSleep
)

var intentNames = [...]string{"idle", "move", "eat", "drink", "mate", "attack", "flee", "sleep"}

func (k IntentKind) String() string {
	if int(k) < len(intentNames) {
		return intentNames[k]
	}
	return fmt.Sprintf("IntentKind(%d)", uint8(k))
}

// Intent is a request. The engine validates and arbitrates it; nothing an
// entity returns is applied directly.
//
// Steps is used by Move, Eat and Drink. Target names the mate, the attack
// victim, the threat to flee from, or for Eat the corpse being fed on (zero
// when eating plain food). Duration is used by Idle and Sleep.
type Intent struct {
	Kind     IntentKind  `json:"kind"`
	Steps    world.Steps `json:"steps,omitempty"`
	Target   EntityID    `json:"target,omitempty"`
	Duration uint32      `json:"duration,omitempty"`
}

func Move(steps world.Steps) Intent { return Intent{Kind: IntentMove, Steps: steps} }

func Eat(steps world.Steps, corpse EntityID) Intent {
	return Intent{Kind: IntentEat, Steps: steps, Target: corpse}
}

func Drink(steps world.Steps) Intent { return Intent{Kind: IntentDrink, Steps: steps} }

func Mate(target EntityID) Intent { return Intent{Kind: IntentMate, Target: target} }

func Attack(target EntityID) Intent { return Intent{Kind: IntentAttack, Target: target} }

func Flee(threat EntityID) Intent { return Intent{Kind: IntentFlee, Target: threat} }

func Idle(d uint32) Intent { return Intent{Kind: IntentIdle, Duration: d} }

func Sleep(d uint32) Intent { return Intent{Kind: IntentSleep, Duration: d} }

func (i Intent) String() string {
	switch i.Kind {
	case IntentMove, IntentDrink:
		return fmt.Sprintf("%s%s", i.Kind, i.Steps)
	case IntentEat:
		if i.Target != 0 {
			return fmt.Sprintf("eat%s corpse=%d", i.Steps, i.Target)
		}
		return fmt.Sprintf("eat%s", i.Steps)
	case IntentMate, IntentAttack, IntentFlee:
		return fmt.Sprintf("%s(%d)", i.Kind, i.Target)
	case IntentIdle, IntentSleep:
		return fmt.Sprintf("%s(%d)", i.Kind, i.Duration)
	}
	return i.Kind.String()
}
