package grpc

import "google.golang.org/protobuf/types/known/timestamppb"

// Dates on the wire are YYYY-MM-DD calendar dates. EndDate is the last night
// of the stay, inclusive.

type Reservation struct {
	Id         string                 `json:"id"`
	OwnerName  string                 `json:"owner_name"`
	OwnerEmail string                 `json:"owner_email"`
	StartDate  string                 `json:"start_date"`
	EndDate    string                 `json:"end_date"`
	CreatedAt  *timestamppb.Timestamp `json:"created_at,omitempty"`
	UpdatedAt  *timestamppb.Timestamp `json:"updated_at,omitempty"`
}

type GetAvailabilityRequest struct {
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
}

type GetAvailabilityResponse struct {
	StartDate string   `json:"start_date"`
	EndDate   string   `json:"end_date"`
	Dates     []string `json:"dates"`
}

type BookReservationRequest struct {
	OwnerName  string `json:"owner_name"`
	OwnerEmail string `json:"owner_email"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
}

type BookReservationResponse struct {
	Reservation *Reservation `json:"reservation"`
}

type ModifyReservationRequest struct {
	ReservationId string `json:"reservation_id"`
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
}

type ModifyReservationResponse struct {
	Reservation *Reservation `json:"reservation"`
}

type CancelReservationRequest struct {
	ReservationId string `json:"reservation_id"`
}

type CancelReservationResponse struct{}

type GetReservationRequest struct {
	ReservationId string `json:"reservation_id"`
}

type GetReservationResponse struct {
	Reservation *Reservation `json:"reservation"`
}
