package domain

import "fmt"

// queueNames maps Riot queue ids to display names
var queueNames = map[int]string{
	420:  "Ranked Solo/Duo",
	440:  "Ranked Flex",
	400:  "Normal Draft",
	430:  "Normal Blind",
	450:  "ARAM",
	1700: "Arena",
	1900: "URF",
}

// QueueName returns the display name for a queue id.
// Unknown ids get a fallback label embedding the id.
func QueueName(queueID int) string {
	if name, ok := queueNames[queueID]; ok {
		return name
	}
	return fmt.Sprintf("Other (%d)", queueID)
}
