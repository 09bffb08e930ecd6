package model

import "time"

// Event represents a concert, game or other happening for which tickets
// are resold. Each event takes place at exactly one venue whose seating
// groups define the submarkets of the event.
//
// Fields:
//  ID        – primary key ("evt_<uuid>").
//  Name      – display name of the event.
//  Date      – when the event takes place.
//  VenueID   – venue hosting the event.
//  CreatedAt – creation timestamp.
type Event struct {
    ID        string    // events.id
    Name      string    // events.name
    Date      time.Time // events.date
    VenueID   string    // events.venue_id
    CreatedAt time.Time // events.created_at
}
