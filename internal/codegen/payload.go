package codegen

import (
	"strings"
	"time"
)

const payloadTimeLayout = "2006-01-02 15:04"

func AssetPayload(name, code, location string) string {
	return join(
		"Asset: "+clean(name),
		"Code: "+clean(code),
		"Location: "+clean(location),
	)
}

func EventPassPayload(code, eventTitle, attendeeName, access string) string {
	return join(
		"Gate Pass: "+clean(code),
		"Event: "+clean(eventTitle),
		"Attendee: "+clean(attendeeName),
		"Access: "+clean(access),
	)
}

func VisitorPassPayload(number, visitorName string, from, until time.Time, status string) string {
	return join(
		"Visitor Pass: "+clean(number),
		"Visitor: "+clean(visitorName),
		"Valid: "+from.UTC().Format(payloadTimeLayout)+" - "+until.UTC().Format(payloadTimeLayout),
		"Status: "+clean(status),
	)
}

// Artifact keys name the bucket objects holding a code's QR image and card.
// They are fixed at creation; a missing object is re-rendered on read.
func AssetArtifactKey(code string) string     { return "assets/" + code + ".png" }
func EventPassArtifactKey(code string) string { return "event-passes/" + code + ".png" }

func join(parts ...string) string { return strings.Join(parts, " | ") }

// clean keeps the " | " delimiter unambiguous.
func clean(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "|", "/")
	return strings.Join(strings.Fields(s), " ")
}
