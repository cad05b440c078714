package layout

import "github.com/whisperwall/whisperwall/internal/model"

// FlashMessage is a one-shot notification shown at the top of the next page
type FlashMessage struct {
	Type    string // "success", "error", or "info"
	Message string
}

// PageData carries the fields every page needs
type PageData struct {
	Title string
	User  *model.User
	Flash *FlashMessage
}
