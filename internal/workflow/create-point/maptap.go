// internal/workflow/create-point/maptap.go
package createpoint

import (
	"fmt"

	"collection-points/internal/common/errors"
	"collection-points/internal/common/geolocation"
	"collection-points/internal/models"
)

// OnMapTap makes the tapped position the one active coordinate. Bounds are
// not checked; only non-finite values are rejected.
func (s *Session) OnMapTap(coord models.GeoCoordinate) error {
	if !geolocation.IsFinite(coord) {
		return errors.NewSelectionRejectedError("coordinate",
			fmt.Sprintf("non-finite position (%v, %v)", coord.Latitude, coord.Longitude))
	}
	if err := s.store.PlaceCoordinate(coord); err != nil {
		return err
	}
	s.logger.Debug("coordinate placed", map[string]interface{}{
		"latitude":  coord.Latitude,
		"longitude": coord.Longitude,
	})
	return nil
}
