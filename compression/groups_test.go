package compression

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ucanhq/convocache/types"
)

func msgAt(id string, role types.Role, sender, content string, at time.Time) *types.Message {
	return &types.Message{ID: id, Role: role, Sender: sender, Content: content, CreatedAt: at}
}

func TestGroupByDate(t *testing.T) {
	day1 := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 3, 11, 23, 59, 59, 0, time.UTC)

	// Interleaved arrival across two days; grouping keeps arrival order
	// within a day and sorts days ascending.
	messages := []*types.Message{
		msgAt("a", types.RoleUser, "Ana", "hi", day2),
		msgAt("b", types.RoleUser, "Ana", "morning", day1),
		msgAt("c", types.RoleAssistant, "", "hello", day2.Add(time.Second)),
		msgAt("d", types.RoleAssistant, "", "good morning", day1.Add(time.Minute)),
	}

	groups := GroupByDate(messages)
	require.Len(t, groups, 2)
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), groups[0].Date)
	assert.Equal(t, []string{"b", "d"}, groups[0].MessageIDs())
	assert.Equal(t, []string{"a", "c"}, groups[1].MessageIDs())
}

func TestGroupByDateUsesUTCDay(t *testing.T) {
	zone := time.FixedZone("UTC+5", 5*3600)
	// 03:00 local on March 11 is still March 10 in UTC.
	local := time.Date(2026, 3, 11, 3, 0, 0, 0, zone)

	groups := GroupByDate([]*types.Message{msgAt("a", types.RoleUser, "", "x", local)})
	require.Len(t, groups, 1)
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), groups[0].Date)
}

func TestGroupByDateEmpty(t *testing.T) {
	assert.Empty(t, GroupByDate(nil))
}

func TestCanonicalText(t *testing.T) {
	at := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	group := MessageGroup{Messages: []*types.Message{
		msgAt("a", types.RoleUser, "Ana", "hi there", at),
		msgAt("b", types.RoleAssistant, "", "hello", at),
	}}

	// Explicit sender wins; the role label fills in when sender is empty.
	assert.Equal(t, "Ana: hi there\nAssistant: hello", group.CanonicalText())
}
