package models

import "time"

type Category string

const (
	CategoryFood       Category = "Alimentação"
	CategoryHealth     Category = "Saúde"
	CategoryRenovation Category = "Reforma"
	CategoryEducation  Category = "Educação"
	CategoryOther      Category = "Outros"
)

type Urgency string

const (
	UrgencyLow      Urgency = "Baixa"
	UrgencyMedium   Urgency = "Média"
	UrgencyHigh     Urgency = "Alta"
	UrgencyCritical Urgency = "Crítica"
)

type RequestStatus string

const (
	StatusOpen       RequestStatus = "Aberto"
	StatusInProgress RequestStatus = "Em Andamento"
	StatusCompleted  RequestStatus = "Concluído"
	StatusCancelled  RequestStatus = "Cancelado"
)

// UpdatePost is a progress note published on a help request.
type UpdatePost struct {
	ID    string    `json:"id"`
	Date  time.Time `json:"date"`
	Text  string    `json:"text"`
	Image string    `json:"image,omitempty"`
}

// HelpRequest represents a funding campaign published by a beneficiary.
type HelpRequest struct {
	ID          string        `json:"id"`
	UserID      string        `json:"user_id"`
	UserName    string        `json:"user_name"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Category    Category      `json:"category"`
	Urgency     Urgency       `json:"urgency"`
	Location    string        `json:"location,omitempty"`
	Goal        float64       `json:"goal"`
	Raised      float64       `json:"raised"`
	Status      RequestStatus `json:"status"`
	Verified    bool          `json:"verified"`
	Image       string        `json:"image,omitempty"`
	PixKey      string        `json:"pix_key"`
	CreatedAt   time.Time     `json:"created_at"`
	Updates     []UpdatePost  `json:"updates"`
}

// Clone returns a copy that shares no slices with r.
func (r HelpRequest) Clone() HelpRequest {
	out := r
	out.Updates = make([]UpdatePost, len(r.Updates))
	copy(out.Updates, r.Updates)
	return out
}

// Donation represents a single donation applied to a help request.
type Donation struct {
	ID           string    `json:"id"`
	RequestID    string    `json:"request_id"`
	RequestTitle string    `json:"request_title"`
	DonorID      string    `json:"donor_id"`
	Amount       float64   `json:"amount"`
	CreatedAt    time.Time `json:"created_at"`
}
