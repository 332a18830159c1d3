package models

import "time"

type Template struct {
	Name      string    `json:"name"`
	Request   Request   `json:"request"`
	CreatedAt time.Time `json:"created_at"`
}
