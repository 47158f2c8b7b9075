package notifier

import (
	"fmt"
	"strings"
)

// ProductDrop is one entry of a user's price-drop batch
type ProductDrop struct {
	ProductName string `json:"product_name"`
	Link        string `json:"link"`
	OldPrice    int    `json:"old_price"`
	NewPrice    int    `json:"new_price"`
}

// Message is a rendered price-drop notification for one recipient
type Message struct {
	Recipient string        `json:"recipient"`
	Subject   string        `json:"subject"`
	Text      string        `json:"text"`
	HTML      string        `json:"html"`
	Drops     []ProductDrop `json:"drops"`
}

// Sink delivers one user's price-drop batch. The core only builds the
// payload; rendering transports (mailer, push) consume it downstream.
type Sink interface {
	// Notify dispatches a batch to a recipient address
	Notify(email string, drops []ProductDrop) error

	// Close closes the sink connection
	Close() error
}

// Render builds the notification message for a recipient and batch
func Render(email string, drops []ProductDrop) Message {
	var body strings.Builder
	for _, drop := range drops {
		fmt.Fprintf(&body, `<p><a href="%s">%s</a>:</p> <p>Old Price: %d</p> <p>New Price: %d</p>`,
			drop.Link, drop.ProductName, drop.OldPrice, drop.NewPrice)
		body.WriteString("<br>")
	}

	return Message{
		Recipient: email,
		Subject:   "Price Drop Alert!",
		Text:      "Check out the latest price.",
		HTML:      fmt.Sprintf("<p><strong>Good news!</strong> The price dropped!</p>%s", body.String()),
		Drops:     drops,
	}
}
