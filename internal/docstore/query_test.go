package docstore

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"infinite-experiment/clanhall/internal/models"
)

func TestEqToleratesNumberStringDrift(t *testing.T) {
	doc := Document{"userId": json.Number("123456789012345678"), "limit": json.Number("8")}

	assert.True(t, Eq("userId", "123456789012345678").Matches(doc))
	assert.True(t, Eq("userId", int64(123456789012345678)).Matches(doc))
	assert.True(t, Eq("limit", 8.0).Matches(doc))
	assert.True(t, Eq("limit", "8").Matches(doc))
	assert.False(t, Eq("limit", 9).Matches(doc))
}

func TestEqNilMatchesMissingAndNull(t *testing.T) {
	missing := Document{"a": "x"}
	null := Document{"clanId": nil}
	set := Document{"clanId": "c1"}

	assert.True(t, Eq("clanId", nil).Matches(missing))
	assert.True(t, Eq("clanId", nil).Matches(null))
	assert.False(t, Eq("clanId", nil).Matches(set))
	assert.False(t, Eq("clanId", "c1").Matches(missing))
}

func TestInMatchesAnyValue(t *testing.T) {
	q := In("userId", []string{"u1", "u2"})

	assert.True(t, q.Matches(Document{"userId": "u2"}))
	assert.False(t, q.Matches(Document{"userId": json.Number("3")}))
	assert.False(t, In("userId", []string{}).Matches(Document{"userId": "u1"}))
}

func TestOrCombinedWithOtherFields(t *testing.T) {
	q := And(
		Eq("guildId", "g1"),
		Or(Eq("name", "Red Team"), Eq("tag", "REDTEAM")),
	)

	assert.True(t, q.Matches(Document{"guildId": "g1", "name": "Red Team"}))
	assert.True(t, q.Matches(Document{"guildId": "g1", "tag": "REDTEAM"}))
	assert.False(t, q.Matches(Document{"guildId": "g2", "tag": "REDTEAM"}))
	assert.False(t, q.Matches(Document{"guildId": "g1", "tag": "BLUE"}))
}

func TestNestedOrIsRejected(t *testing.T) {
	q := Or(Eq("a", 1), And(Eq("b", 2), Or(Eq("c", 3))))
	require.ErrorIs(t, q.Validate(), ErrInvalidQuery)
	require.ErrorIs(t, Eq("", 1).Validate(), ErrInvalidQuery)
	require.NoError(t, Where(map[string]any{"guildId": "g1", "userId": "u1"}).Validate())
}

func TestAllMatchesEverything(t *testing.T) {
	assert.True(t, All().Matches(Document{}))
	assert.True(t, And().Matches(Document{"x": 1}))
}

func TestEqWithNullEncodedValues(t *testing.T) {
	unaffiliated := Document{"userId": "B", "clanId": nil}
	missing := Document{"userId": "C"}
	member := Document{"userId": "A", "clanId": "c1"}

	q := Eq("clanId", models.ID(""))
	assert.True(t, q.Matches(unaffiliated))
	assert.True(t, q.Matches(missing))
	assert.False(t, q.Matches(member))

	assert.True(t, Eq("clanId", models.ID("c1")).Matches(member))
	assert.False(t, Eq("clanId", models.ID("c1")).Matches(unaffiliated))
	assert.True(t, In("clanId", []models.ID{"c2", "c1"}).Matches(member))

	var nilID *models.ID
	assert.True(t, Eq("clanId", nilID).Matches(unaffiliated))
}
