// Package services contains application use cases.
package services

import (
	"log/slog"

	apperrors "github.com/armature-dev/armature/internal/application/errors"
	"github.com/armature-dev/armature/internal/application/ports"
	"github.com/armature-dev/armature/internal/domain/entities"
)

// loadedUnits holds units in file order with the file each came from.
type loadedUnits struct {
	units   []*entities.Unit
	sources []string
}

func loadUnitFiles(loader ports.UnitLoader, paths []string, logger *slog.Logger) (*loadedUnits, error) {
	loaded := &loadedUnits{}
	for _, path := range paths {
		units, err := loader.LoadUnits(path)
		if err != nil {
			return nil, apperrors.NewLoadError(path, err)
		}
		logger.Info("units loaded", "path", path, "count", len(units))

		for _, u := range units {
			loaded.units = append(loaded.units, u)
			loaded.sources = append(loaded.sources, path)
		}
	}
	return loaded, nil
}

func unitID(u *entities.Unit) string {
	if u == nil {
		return ""
	}
	return u.ID
}
