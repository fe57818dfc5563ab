package screen

import "livemarket-sync/utils"

// LogNotifier renders notifications as structured log lines. Real frontends
// replace it with their toast widget.
type LogNotifier struct{}

func (LogNotifier) BidPlaced(carMake, carModel string, amount float64) {
	utils.Info("new bid placed", map[string]any{
		"car":    carMake + " " + carModel,
		"amount": amount,
	})
}

func (LogNotifier) LotApprovalChanged(carMake, carModel string, approved bool) {
	if approved {
		utils.Info("lot approved for live auction", map[string]any{"car": carMake + " " + carModel})
		return
	}
	utils.Warn("lot removed from live auction", map[string]any{"car": carMake + " " + carModel})
}

func (LogNotifier) LotStatusChanged(carMake, carModel, oldStatus, newStatus string) {
	utils.Info("auction status changed", map[string]any{
		"car":  carMake + " " + carModel,
		"from": oldStatus,
		"to":   newStatus,
	})
}
