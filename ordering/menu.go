package ordering

// MenuPrices maps each orderable item to its unit price. Items not in
// the menu cannot be ordered.
var MenuPrices = map[string]float64{
	"Margherita Pizza":      12.00,
	"Pepperoni Pizza":       14.00,
	"Chicken Alfredo Pasta": 16.00,
	"Caesar Salad":          10.00,
	"Chocolate Lava Cake":   8.00,
}

// MenuPrice looks up the unit price for an item.
func MenuPrice(itemName string) (float64, bool) {
	price, ok := MenuPrices[itemName]
	return price, ok
}
