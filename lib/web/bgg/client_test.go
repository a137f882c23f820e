package bgg

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const playsFixture = `<plays username="alice" userid="42" total="250" page="2">
  <play id="7" date="2024-02-01" quantity="1" length="60" incomplete="0" nowinstats="0" location="club">
    <item name="Brass" objecttype="thing" objectid="28720">
      <subtypes><subtype value="boardgame"/></subtypes>
    </item>
    <comments>tight endgame</comments>
    <players>
      <player username="alice" userid="42" name="Alice" startposition="1" color="Black" score="143" new="0" rating="7.5" win="1"/>
      <player username="" userid="0" name="Guest" startposition="2" color="White" score="120" new="1" rating="0" win="0"/>
    </players>
  </play>
</plays>`

func TestPlaysByGameParsesResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/plays", r.URL.Path)
		assert.Equal(t, "alice", r.URL.Query().Get("username"))
		assert.Equal(t, "28720", r.URL.Query().Get("id"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		fmt.Fprint(w, playsFixture)
	}))
	defer server.Close()

	c := NewClient(server.URL)
	res, err := c.PlaysByGame(context.Background(), "alice", 28720, 2)
	require.NoError(t, err)
	require.True(t, res.Success)

	body := res.Data
	assert.Equal(t, "alice", body.Username)
	assert.Equal(t, 250, body.Total)
	assert.Equal(t, 2, body.Page)
	require.Len(t, body.Plays, 1)

	play := body.Plays[0]
	assert.Equal(t, int64(7), play.ID)
	assert.Equal(t, int64(28720), play.Item.ObjectID)
	assert.Equal(t, "tight endgame", play.Comments)
	require.Len(t, play.Players, 2)
	assert.Equal(t, "alice", play.Players[0].Username)
	assert.Equal(t, 7.5, play.Players[0].Rating)
	assert.Equal(t, 1, play.Players[1].New)
	assert.Equal(t, "", play.Players[1].Username)
}

func TestNonSuccessStatusIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	c := NewClient(server.URL)
	res, err := c.Plays(context.Background(), "alice", 1)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, http.StatusAccepted, res.StatusCode)
	assert.Nil(t, res.Data)
}

func TestMalformedBodyIsAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html>maintenance</html>")
	}))
	defer server.Close()

	c := NewClient(server.URL)
	_, err := c.Plays(context.Background(), "alice", 1)
	assert.Error(t, err)
}

func TestFetchCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient("http://localhost:0")
	_, err := c.Plays(ctx, "alice", 1)
	assert.Error(t, err)
}

func TestHasMorePages(t *testing.T) {
	assert.True(t, (&PlaysResponse{Total: 250, Page: 1}).HasMorePages())
	assert.True(t, (&PlaysResponse{Total: 250, Page: 2}).HasMorePages())
	assert.False(t, (&PlaysResponse{Total: 250, Page: 3}).HasMorePages())
	assert.False(t, (&PlaysResponse{Total: 0, Page: 1}).HasMorePages())
	assert.False(t, (&PlaysResponse{Total: 100, Page: 1}).HasMorePages())
}
