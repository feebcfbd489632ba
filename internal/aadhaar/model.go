package aadhaar

import "time"

// DocumentPair is a seeker's Aadhaar front/back images. One pair per seeker,
// reused across applications.
type DocumentPair struct {
	SeekerID   string    `json:"-"`
	FrontKey   string    `json:"-"`
	BackKey    string    `json:"-"`
	FrontURL   string    `json:"front"`
	BackURL    string    `json:"back"`
	UploadedAt time.Time `json:"uploadedAt"`
}
