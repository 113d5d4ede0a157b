package model

import (
	"fmt"
	"strings"
)

// RoomLink is the URL participants open to join a room.
func RoomLink(publicBaseURL string, roomID RoomID) string {
	return strings.TrimRight(publicBaseURL, "/") + "/room/" + string(roomID)
}

func ShareText(loser string, link string) string {
	return fmt.Sprintf("%s was selected! 🎯\n%s", loser, link)
}
