package repository

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/mamadbah2/turnos/internal/domain/models"
)

// Inserter creates rows from pointers to model values and fills in their IDs.
type Inserter interface {
	Insert(ctx context.Context, value any) error
}

type sampleUser struct {
	username, password, name, role string
}

// SeedSamplePlant loads three shifts, three stations, five users, three
// fabrics and a three-lot queue per station. Every station starts on its
// first queued fabric at unit 1.
func SeedSamplePlant(ctx context.Context, db Inserter) error {
	shifts := []*models.Shift{
		{Name: "T1", Start: "06:00", End: "14:00"},
		{Name: "T2", Start: "14:00", End: "22:00"},
		{Name: "T3", Start: "22:00", End: "06:00"},
	}
	stations := []*models.Station{{Code: "#1"}, {Code: "#6"}, {Code: "#8"}}
	users := []sampleUser{
		{"super1", "1234", "Supervisor 1", models.RoleSupervisor},
		{"super2", "1234", "Supervisor 2", models.RoleSupervisor},
		{"super3", "1234", "Supervisor 3", models.RoleSupervisor},
		{"gerente", "1234", "Gerente", models.RoleManager},
		{"sistemas", "1234", "Sistemas", models.RoleSystems},
	}
	fabrics := []*models.Fabric{
		{Code: "T-100", Description: "Tela ejemplo 100", TotalUnits: 80},
		{Code: "T-200", Description: "Tela ejemplo 200", TotalUnits: 60},
		{Code: "T-300", Description: "Tela ejemplo 300", TotalUnits: 100},
	}

	for _, sh := range shifts {
		if err := db.Insert(ctx, sh); err != nil {
			return fmt.Errorf("seed shift %s: %w", sh.Name, err)
		}
	}
	for _, st := range stations {
		if err := db.Insert(ctx, st); err != nil {
			return fmt.Errorf("seed station %s: %w", st.Code, err)
		}
	}
	for _, u := range users {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash password for %s: %w", u.username, err)
		}
		user := &models.User{Username: u.username, PasswordHash: string(hash), Name: u.name, Role: u.role, Active: true}
		if err := db.Insert(ctx, user); err != nil {
			return fmt.Errorf("seed user %s: %w", u.username, err)
		}
	}
	for _, st := range stations {
		for _, sh := range shifts {
			a := &models.Assignment{
				StationID:     st.ID,
				ShiftID:       sh.ID,
				EncargadoName: fmt.Sprintf("%s - Encargado %s", st.Code, sh.Name),
				Active:        true,
			}
			if err := db.Insert(ctx, a); err != nil {
				return fmt.Errorf("seed assignment %s/%s: %w", st.Code, sh.Name, err)
			}
		}
	}
	for _, f := range fabrics {
		if err := db.Insert(ctx, f); err != nil {
			return fmt.Errorf("seed fabric %s: %w", f.Code, err)
		}
	}
	for _, st := range stations {
		for i, f := range fabrics {
			q := &models.QueueEntry{StationID: st.ID, FabricID: f.ID, Order: i + 1, Active: true}
			if err := db.Insert(ctx, q); err != nil {
				return fmt.Errorf("seed queue %s/%s: %w", st.Code, f.Code, err)
			}
		}
		first := fabrics[0].ID
		state := &models.StationState{StationID: st.ID, CurrentFabricID: &first, NextUnit: 1}
		if err := db.Insert(ctx, state); err != nil {
			return fmt.Errorf("seed state %s: %w", st.Code, err)
		}
	}
	return nil
}
