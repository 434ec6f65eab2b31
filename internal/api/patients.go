package api

import (
	"context"
	"fmt"

	"github.com/tvu/careboard/internal/model"
)

// ListPatients fetches all patient records.
func (c *Client) ListPatients(ctx context.Context) ([]model.Patient, error) {
	var patients []model.Patient
	if err := c.Get(ctx, "/patients", &patients); err != nil {
		return nil, fmt.Errorf("listing patients: %w", err)
	}
	return patients, nil
}

// CreatePatient registers a new patient record.
func (c *Client) CreatePatient(ctx context.Context, p model.Patient) (*model.Patient, error) {
	var created model.Patient
	if err := c.Post(ctx, "/patients", p, &created); err != nil {
		return nil, fmt.Errorf("creating patient: %w", err)
	}
	return &created, nil
}

// DeletePatient removes a patient record.
func (c *Client) DeletePatient(ctx context.Context, id int64) error {
	if err := c.Delete(ctx, fmt.Sprintf("/patients/%d", id)); err != nil {
		return fmt.Errorf("deleting patient %d: %w", id, err)
	}
	return nil
}

// ListHospitals fetches all facilities, used during patient registration.
func (c *Client) ListHospitals(ctx context.Context) ([]model.Hospital, error) {
	var hospitals []model.Hospital
	if err := c.Get(ctx, "/hospitals", &hospitals); err != nil {
		return nil, fmt.Errorf("listing hospitals: %w", err)
	}
	return hospitals, nil
}
