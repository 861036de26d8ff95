// Package profile holds the trainer's own details: display name, trainer
// id, avatar, height, and weight.
package profile

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// DefaultArtworkURL is the image prefix for avatar presets; "<id>.png" is appended.
const DefaultArtworkURL = "https://raw.githubusercontent.com/PokeAPI/sprites/master/sprites/pokemon/other/official-artwork/"

const (
	DefaultName     = "Trainer"
	DefaultID       = "000000"
	DefaultHeightCM = 170
	DefaultWeightKG = 70
)

// AvatarPresets lists the catalog artwork ids offered as avatars.
var AvatarPresets = []int{25, 1, 4, 7, 133, 150, 94, 448}

// AvatarURL returns the preset artwork URL for catalog id n.
func AvatarURL(n int) string {
	return fmt.Sprintf("%s%d.png", DefaultArtworkURL, n)
}

// State is the persisted profile document.
type State struct {
	Name     string  `json:"trainerName" validate:"required"`
	ID       string  `json:"trainerId" validate:"len=6,numeric"`
	Avatar   string  `json:"avatar"`
	HeightCM float64 `json:"trainerHeight" validate:"gte=0"`
	WeightKG float64 `json:"trainerWeight" validate:"gte=0"`
}

// DefaultState returns the profile of a user who has changed nothing.
func DefaultState() State {
	return State{
		Name:     DefaultName,
		ID:       DefaultID,
		Avatar:   AvatarURL(AvatarPresets[0]),
		HeightCM: DefaultHeightCM,
		WeightKG: DefaultWeightKG,
	}
}

func cloneState(s State) State { return s }

var validate = validator.New()

// Validate reports whether s is well formed.
func (s State) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("invalid profile: %w", err)
	}
	return nil
}
