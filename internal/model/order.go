package model

// Order dates are RFC 3339 strings. The order-history time window filter
// compares them lexically, which is only correct for this encoding.
type Order struct {
	ID           string  `bson:"_id,omitempty" json:"id"`
	UserID       string  `bson:"userId" json:"userId"`
	ProductName  string  `bson:"productName" json:"productName"`
	TotalPrice   float64 `bson:"totalPrice" json:"totalPrice"`
	ImageURL     string  `bson:"imageURL" json:"imageURL"`
	Description  string  `bson:"description" json:"description"`
	Quantity     int     `bson:"quantity" json:"quantity"`
	OrderedAt    string  `bson:"orderedAt" json:"orderedAt"`
	ArrivalDate  string  `bson:"arrivalDate" json:"arrivalDate"`
	ReturnStatus bool    `bson:"returnStatus" json:"returnStatus"`
}
