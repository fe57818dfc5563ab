package fetcher

import (
	"strconv"
	"strings"
	"time"

	"livemarket-sync/internal/models"
)

// flexFloat accepts JSON numbers and string-encoded numbers; the production
// API returns money fields as strings like "20000.00".
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return err
	}
	*f = flexFloat(n)
	return nil
}

type wireBid struct {
	Amount    flexFloat `json:"amount"`
	BidAmount flexFloat `json:"bid_amount"`
	BidderID  int64     `json:"bidder_id"`
	CreatedAt time.Time `json:"created_at"`
}

type wireCar struct {
	CarID     int64          `json:"id"`
	Make      string         `json:"make"`
	Model     string         `json:"model"`
	Year      int            `json:"year"`
	VIN       string         `json:"vin"`
	Odometer  int64          `json:"odometer"`
	Condition string         `json:"condition"`
	UserID    int64          `json:"user_id"`
	Dealer    *models.Dealer `json:"dealer"`
}

// wireLot tolerates the field aliases the various endpoints use for the same
// attribute (current_bid/current_price, opening_price/starting_bid).
type wireLot struct {
	LotID           int64     `json:"id"`
	CarID           int64     `json:"car_id"`
	Car             *wireCar  `json:"car"`
	MinPrice        flexFloat `json:"min_price"`
	MaxPrice        flexFloat `json:"max_price"`
	OpeningPrice    flexFloat `json:"opening_price"`
	StartingBid     flexFloat `json:"starting_bid"`
	CurrentBid      flexFloat `json:"current_bid"`
	CurrentPrice    flexFloat `json:"current_price"`
	Viewers         int       `json:"viewers"`
	Status          string    `json:"status"`
	ApprovedForLive bool      `json:"approved_for_live"`
	Bids            []wireBid `json:"bids"`
}

type wireSnapshot struct {
	Current   *wireLot  `json:"current_live_car"`
	Pending   []wireLot `json:"pending_live_auctions"`
	Completed []wireLot `json:"completed_live_auctions"`
}

// normalize converts a wire lot into the canonical model. The current bid is
// derived from the tail of the bid history when one is present, so the view
// never shows a total the history disagrees with.
func (wl wireLot) normalize() models.Lot {
	lot := models.Lot{
		LotID:           wl.LotID,
		CarID:           wl.CarID,
		MinPrice:        float64(wl.MinPrice),
		MaxPrice:        float64(wl.MaxPrice),
		OpeningPrice:    float64(wl.OpeningPrice),
		CurrentBid:      float64(wl.CurrentBid),
		Viewers:         wl.Viewers,
		Status:          wl.Status,
		ApprovedForLive: wl.ApprovedForLive,
	}
	if lot.OpeningPrice == 0 {
		lot.OpeningPrice = float64(wl.StartingBid)
	}
	if lot.CurrentBid == 0 {
		lot.CurrentBid = float64(wl.CurrentPrice)
	}
	if lot.CarID == 0 && wl.Car != nil {
		lot.CarID = wl.Car.CarID
	}

	if wl.Car != nil {
		lot.Car = &models.Car{
			CarID:     wl.Car.CarID,
			Make:      wl.Car.Make,
			Model:     wl.Car.Model,
			Year:      wl.Car.Year,
			VIN:       wl.Car.VIN,
			Odometer:  wl.Car.Odometer,
			Condition: wl.Car.Condition,
			UserID:    wl.Car.UserID,
			Dealer:    wl.Car.Dealer,
		}
	}

	if len(wl.Bids) > 0 {
		lot.BidHistory = make([]models.Bid, 0, len(wl.Bids))
		for _, wb := range wl.Bids {
			amount := float64(wb.Amount)
			if amount == 0 {
				amount = float64(wb.BidAmount)
			}
			lot.BidHistory = append(lot.BidHistory, models.Bid{
				Amount:    amount,
				BidderID:  wb.BidderID,
				CreatedAt: wb.CreatedAt,
			})
		}
		sortHistory(lot.BidHistory)
		lot.CurrentBid = lot.BidHistory[len(lot.BidHistory)-1].Amount
	}

	return lot
}
