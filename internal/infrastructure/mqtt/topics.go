package mqtt

import (
	"fmt"
	"strings"
)

// Topic roots.
const (
	// TopicRoot prefixes every Café Core topic.
	TopicRoot = "cafecore"

	TopicPrefixPresence = TopicRoot + "/presence"
	TopicPrefixSeat     = TopicRoot + "/seat"
	TopicPrefixCore     = TopicRoot + "/core"
	TopicPrefixSystem   = TopicRoot + "/system"
)

// Topics builds Café Core topics.
//
//	mqtt.Topics{}.PresenceEvent("user-42") // cafecore/presence/user-42
//	mqtt.Topics{}.ZoneOccupancy("bar")     // cafecore/core/zone/bar/occupancy
type Topics struct{}

// =============================================================================
// Inbound
// =============================================================================

// PresenceEvent is where a transport publishes presence events for one user.
func (Topics) PresenceEvent(userID string) string {
	return fmt.Sprintf("%s/%s", TopicPrefixPresence, userID)
}

// SeatCommand is where a transport publishes claim/vacate commands for one user.
func (Topics) SeatCommand(userID string) string {
	return fmt.Sprintf("%s/command/%s", TopicPrefixSeat, userID)
}

// AllPresenceEvents matches every user's presence topic.
func (Topics) AllPresenceEvents() string {
	return TopicPrefixPresence + "/+"
}

// AllSeatCommands matches every user's seat command topic.
func (Topics) AllSeatCommands() string {
	return TopicPrefixSeat + "/command/+"
}

// =============================================================================
// Outbound
// =============================================================================

// ZoneOccupancy carries the retained {occupied, capacity} state of a zone.
func (Topics) ZoneOccupancy(zoneID string) string {
	return fmt.Sprintf("%s/zone/%s/occupancy", TopicPrefixCore, zoneID)
}

// SeatState carries the retained state of one seat.
func (Topics) SeatState(seatID string) string {
	return fmt.Sprintf("%s/seat/%s/state", TopicPrefixCore, seatID)
}

// SeatResult is where the outcome of a user's seat command is published.
func (Topics) SeatResult(userID string) string {
	return fmt.Sprintf("%s/seat/result/%s", TopicPrefixCore, userID)
}

// AllZoneOccupancy matches every zone occupancy topic.
func (Topics) AllZoneOccupancy() string {
	return TopicPrefixCore + "/zone/+/occupancy"
}

// SystemStatus carries the online/offline status of the core (LWT target).
func (Topics) SystemStatus() string {
	return TopicPrefixSystem + "/status"
}

// AllTopics matches everything under the root. Debugging only.
func (Topics) AllTopics() string {
	return TopicRoot + "/#"
}

// LastSegment returns the final level of a topic, which for presence and
// seat command topics is the user ID.
func LastSegment(topic string) string {
	if i := strings.LastIndexByte(topic, '/'); i >= 0 {
		return topic[i+1:]
	}
	return topic
}
