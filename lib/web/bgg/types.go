package bgg

import "encoding/xml"

// PlaysPerPage is the fixed page size of the plays endpoint.
const PlaysPerPage = 100

// PlaysResponse is one page of logged plays.
type PlaysResponse struct {
	XMLName  xml.Name       `xml:"plays"`
	Username string         `xml:"username,attr"`
	UserID   int64          `xml:"userid,attr"`
	Total    int            `xml:"total,attr"`
	Page     int            `xml:"page,attr"`
	Plays    []PlayResponse `xml:"play"`
}

// HasMorePages reports whether another page exists after the current one.
func (r *PlaysResponse) HasMorePages() bool {
	return r.Page*PlaysPerPage < r.Total
}

// PlayResponse is one logged play as returned by the remote service.
type PlayResponse struct {
	ID         int64            `xml:"id,attr"`
	Date       string           `xml:"date,attr"`
	Quantity   int              `xml:"quantity,attr"`
	Length     int              `xml:"length,attr"`
	Incomplete int              `xml:"incomplete,attr"`
	NoWinStats int              `xml:"nowinstats,attr"`
	Location   string           `xml:"location,attr"`
	Item       PlayItem         `xml:"item"`
	Comments   string           `xml:"comments"`
	Players    []PlayerResponse `xml:"players>player"`
}

// PlayItem identifies the game a play was logged against.
type PlayItem struct {
	Name       string        `xml:"name,attr"`
	ObjectType string        `xml:"objecttype,attr"`
	ObjectID   int64         `xml:"objectid,attr"`
	Subtypes   []PlaySubtype `xml:"subtypes>subtype"`
}

type PlaySubtype struct {
	Value string `xml:"value,attr"`
}

// PlayerResponse is one participant of a play.
type PlayerResponse struct {
	Username      string  `xml:"username,attr"`
	UserID        int64   `xml:"userid,attr"`
	Name          string  `xml:"name,attr"`
	StartPosition string  `xml:"startposition,attr"`
	Color         string  `xml:"color,attr"`
	Score         string  `xml:"score,attr"`
	New           int     `xml:"new,attr"`
	Rating        float64 `xml:"rating,attr"`
	Win           int     `xml:"win,attr"`
}
