// Package intake drives the guided form dialogue that collects a product
// submission one field per user turn.
package intake

import "github.com/skupfast/skupbot/core/telegram/state"

// Dialogue stages, in strict order. There is no idle stage stored: a session
// exists only between the "start form" intent and the city answer.
const (
	StageName     state.State = "form_name"
	StageQuantity state.State = "form_quantity"
	StageURL      state.State = "form_url"
	StageUnpacked state.State = "form_unpacked"
	StageCity     state.State = "form_city"
)

// KeyboardHint tells the transport which reply markup accompanies a prompt.
type KeyboardHint int

const (
	// KeyboardNone leaves the current keyboard untouched.
	KeyboardNone KeyboardHint = iota
	// KeyboardYesNo suggests the two unpacked-state answers.
	KeyboardYesNo
	// KeyboardRemove hides any suggestion keyboard.
	KeyboardRemove
)

// Prompt is the message shown when a stage is entered.
type Prompt struct {
	Text     string
	Keyboard KeyboardHint
}

// Transition describes what happens when the input for a stage arrives:
// which form field the input fills, whether the dialogue is complete, and
// otherwise the next stage with its prompt.
type Transition struct {
	Field  string
	Final  bool
	Next   state.State
	Prompt Prompt
}

// Form field keys used for the session temp data.
const (
	fieldName     = "name"
	fieldQuantity = "quantity"
	fieldURL      = "url"
	fieldUnpacked = "unpacked"
)

// StartPrompt is shown when the dialogue begins.
var StartPrompt = Prompt{Text: "Введите название товара:"}

var transitions = map[state.State]Transition{
	StageName: {
		Field: fieldName,
		Next:  StageQuantity,
		Prompt: Prompt{
			Text: "Количество товара (число или описание):",
		},
	},
	StageQuantity: {
		Field: fieldQuantity,
		Next:  StageURL,
		Prompt: Prompt{
			Text: "Ссылка на товар (если есть), либо напишите '-' :",
		},
	},
	StageURL: {
		Field: fieldURL,
		Next:  StageUnpacked,
		Prompt: Prompt{
			Text:     "Распакован ли товар? (Да/Нет)",
			Keyboard: KeyboardYesNo,
		},
	},
	StageUnpacked: {
		Field: fieldUnpacked,
		Next:  StageCity,
		Prompt: Prompt{
			Text:     "Укажите город, где находится товар:",
			Keyboard: KeyboardRemove,
		},
	},
	StageCity: {
		Final: true,
	},
}

// Advance returns the transition for the given stage. Inputs are stored
// verbatim; no field is validated.
func Advance(stage state.State) (Transition, bool) {
	tr, ok := transitions[stage]
	return tr, ok
}

// Stages lists the dialogue stages in collection order.
func Stages() []state.State {
	return []state.State{StageName, StageQuantity, StageURL, StageUnpacked, StageCity}
}
