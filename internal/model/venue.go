package model

import "github.com/shopspring/decimal"

// Venue represents a physical location where events take place. A venue
// is partitioned into named seating groups; each group carries a
// reference value, an external per-seat benchmark price supplied with
// the venue data. Reference values are context for offer generation
// only and never decide negotiation outcomes.
//
// Fields:
//  ID            – primary key ("ven_<uuid>").
//  Name          – display name of the venue.
//  City          – city the venue is located in.
//  SeatingGroups – the venue's seating groups with benchmark values.
type Venue struct {
    ID            string         // venues.id
    Name          string         // venues.name
    City          string         // venues.city
    SeatingGroups []SeatingGroup // seating_groups rows for this venue
}

// SeatingGroup is one section of a venue (e.g. FLOOR_PREMIUM) together
// with its reference value.
type SeatingGroup struct {
    GroupID        string          // seating_groups.group_id
    Name           string          // seating_groups.name
    ReferenceValue decimal.Decimal // seating_groups.reference_value
}

// Group returns the seating group with the given id, if present.
func (v Venue) Group(groupID string) (SeatingGroup, bool) {
    for _, g := range v.SeatingGroups {
        if g.GroupID == groupID {
            return g, true
        }
    }
    return SeatingGroup{}, false
}
