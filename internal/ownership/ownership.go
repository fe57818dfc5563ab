// Package ownership derives whether the viewer owns or represents a lot.
package ownership

import "livemarket-sync/internal/models"

// ViewerOwnsLot reports whether the viewer owns the lot's car outright or
// represents it as the listing dealer. A zero viewerID means no viewer is
// logged in and always yields false, as does a lot without car data.
func ViewerOwnsLot(viewerID int64, lot *models.Lot) bool {
	if viewerID == 0 || lot == nil || lot.Car == nil {
		return false
	}
	if lot.Car.UserID == viewerID {
		return true
	}
	return lot.Car.Dealer != nil && lot.Car.Dealer.UserID == viewerID
}
