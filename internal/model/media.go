package model

import "strings"

// BaseVideoDefault selects the template clip the media service renders onto.
const BaseVideoDefault = "1"

// MediaRequest is the payload understood by the media service. Winner is the
// drawn participant, named from the service's point of view.
type MediaRequest struct {
	RoomID    RoomID
	Winner    string
	Others    []string
	BaseVideo string
}

const placeholderMarker = "placeholder.svg"

// PlaceholderMemeURLs is the fixed slide set used by image draws.
func PlaceholderMemeURLs() []string {
	return []string{
		"/placeholder.svg?height=400&width=400&text=first+cut",
		"/placeholder.svg?height=400&width=400&text=second+cut",
		"/placeholder.svg?height=400&width=400&text=third+cut",
		"/placeholder.svg?height=400&width=400&text=final+cut",
	}
}

func IsPlaceholder(url string) bool {
	return strings.Contains(url, placeholderMarker)
}
