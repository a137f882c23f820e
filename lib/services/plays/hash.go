package plays

import (
	"hash/fnv"
	"strconv"
	"strings"
)

// SyncHashCode computes the content hash used to cheaply detect whether a
// re-fetched remote record differs from the stored one. The hash covers every
// field that matters for change detection, players included, in iteration
// order: reordering an otherwise unchanged player list registers as a change.
func (p *Play) SyncHashCode() int64 {
	var sb strings.Builder
	appendLine(&sb, p.Date)
	appendLine(&sb, strconv.Itoa(p.Quantity))
	appendLine(&sb, strconv.Itoa(p.Length))
	appendLine(&sb, strconv.FormatBool(p.Incomplete))
	appendLine(&sb, strconv.FormatBool(p.NoWinStats))
	appendLine(&sb, p.Location)
	appendLine(&sb, p.Comments)
	for i := range p.Players {
		pl := &p.Players[i]
		appendLine(&sb, pl.Username)
		appendLine(&sb, strconv.FormatInt(pl.UserID, 10))
		appendLine(&sb, pl.Name)
		appendLine(&sb, pl.StartingPosition)
		appendLine(&sb, pl.Color)
		appendLine(&sb, pl.Score)
		appendLine(&sb, strconv.FormatBool(pl.IsNew))
		appendLine(&sb, strconv.FormatFloat(pl.Rating, 'f', -1, 64))
		appendLine(&sb, strconv.FormatBool(pl.IsWin))
	}

	h := fnv.New32a()
	h.Write([]byte(sb.String()))
	return int64(h.Sum32())
}

func appendLine(sb *strings.Builder, s string) {
	sb.WriteString(s)
	sb.WriteByte('\n')
}
