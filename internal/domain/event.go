package domain

// EventType classifies what happened in the viewer.
type EventType int

const (
	EventUnknown EventType = iota
	EventShowList
	EventToggleTag
	EventClearTags
	EventOpenRecipe
	EventDetailLoaded // a fetch started by EventOpenRecipe finished
	EventEditServings
	EventEditIngredient
	EventBack
	EventHelp
	EventQuit
)

// String returns a human-readable event type.
func (e EventType) String() string {
	switch e {
	case EventShowList:
		return "show_list"
	case EventToggleTag:
		return "toggle_tag"
	case EventClearTags:
		return "clear_tags"
	case EventOpenRecipe:
		return "open_recipe"
	case EventDetailLoaded:
		return "detail_loaded"
	case EventEditServings:
		return "edit_servings"
	case EventEditIngredient:
		return "edit_ingredient"
	case EventBack:
		return "back"
	case EventHelp:
		return "help"
	case EventQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// Event is a single user action or async completion fed to the viewer.
type Event struct {
	Type    EventType
	Payload string // tag name, recipe reference, or raw typed value
	Index   int    // 0-based ingredient index for EventEditIngredient

	// Set on EventDetailLoaded only.
	Detail *RecipeDetail
	Err    error
}
