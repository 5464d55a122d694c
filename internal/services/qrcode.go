package services

import (
	"fmt"

	"github.com/franciscosanchezn/food-ordering-api/internal/models"
	"github.com/skip2/go-qrcode"
)

// QRGenerator renders the pickup code shown to couriers and restaurant staff
type QRGenerator interface {
	Generate(order *models.Order) ([]byte, error)
}

type PickupQRGenerator struct {
	Size int
}

// PickupPayload is the text encoded in the QR image
func PickupPayload(order *models.Order) string {
	return fmt.Sprintf("order:%d;restaurant:%d;total:%s", order.ID, order.RestaurantID, order.TotalPrice.StringFixed(2))
}

func (g PickupQRGenerator) Generate(order *models.Order) ([]byte, error) {
	size := g.Size
	if size <= 0 {
		size = 256
	}
	return qrcode.Encode(PickupPayload(order), qrcode.Medium, size)
}
