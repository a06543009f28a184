package models

import "time"

// User is an account record. Password and reset-token state never leave the
// server: they are excluded from JSON serialization.
type User struct {
	ID           string    `json:"_id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Avatar       string    `json:"avatar,omitempty"`
	Sports       []string  `json:"sports"`
	Interests    []string  `json:"interests"`
	Location     string    `json:"location,omitempty"`
	PhoneNumber  string    `json:"phone_number,omitempty"`
	Terms        bool      `json:"terms"`
	TokenVersion int64     `json:"-"`
	ResetToken   string    `json:"-"`
	ResetExpires time.Time `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserPatch is a partial profile update. Nil fields are left untouched.
type UserPatch struct {
	Sports      []string
	Interests   []string
	Location    *string
	PhoneNumber *string
	Terms       *bool
	Avatar      *string
}

// Sports and Interests are the enumerated vocabularies a profile may draw
// from. To be updated as the available sports services change.
var Sports = []string{
	"Football", "Basketball", "Netball", "Tennis", "Motorsport", "Golf",
	"Rugby", "Hockey", "Atheltics", "Cycling", "Swimming", "Equestrian",
	"Baseball", "Ice Hockey", "Snooker", "Boxing", "American Football",
	"MMA", "Cricket",
}

var Interests = []string{
	"Premier League", "La Liga", "Serie A", "Bundesliga", "Ligue 1",
	"UEFA Champions League", "UEFA Europa League", "UEFA Conference League",
	"FA Cup", "UEFA Euros", "UEFA Nations League", "NBA", "NFL", "MLB",
	"NHL", "PGA Tour", "Formula 1", "Moto GP", "NASCAR", "WRC", "IPL",
	"CAF Champions League", "BAL", "Euroleague", "IndyCar", "WSL",
	"EFL Championship", "Eredivisie",
}

// ValidSports reports whether every value is in the Sports vocabulary.
func ValidSports(values []string) bool { return allIn(values, Sports) }

// ValidInterests reports whether every value is in the Interests vocabulary.
func ValidInterests(values []string) bool { return allIn(values, Interests) }

func allIn(values, vocabulary []string) bool {
	for _, v := range values {
		found := false
		for _, w := range vocabulary {
			if v == w {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
