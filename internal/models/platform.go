package models

type Platform struct {
	ID   int    `json:"id"`
	Code int    `json:"code"`
	Name string `json:"name"`
}
