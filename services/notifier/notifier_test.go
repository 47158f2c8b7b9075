package notifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRender(t *testing.T) {
	drops := []ProductDrop{
		{ProductName: "Acme Phone 5G", Link: "https://www.flipkart.com/p/itm1", OldPrice: 12999, NewPrice: 10999},
		{ProductName: "Acme Buds", Link: "https://www.flipkart.com/p/itm2", OldPrice: 1999, NewPrice: 1499},
	}

	message := Render("alice@example.com", drops)

	assert.Equal(t, "alice@example.com", message.Recipient)
	assert.Equal(t, "Price Drop Alert!", message.Subject)
	assert.Equal(t, "Check out the latest price.", message.Text)
	assert.Equal(t, drops, message.Drops)

	assert.Contains(t, message.HTML, "The price dropped!")
	assert.Contains(t, message.HTML, `<a href="https://www.flipkart.com/p/itm1">Acme Phone 5G</a>`)
	assert.Contains(t, message.HTML, "Old Price: 12999")
	assert.Contains(t, message.HTML, "New Price: 10999")
	assert.Contains(t, message.HTML, `<a href="https://www.flipkart.com/p/itm2">Acme Buds</a>`)
}

func TestRenderEmptyBatch(t *testing.T) {
	message := Render("alice@example.com", nil)
	assert.Equal(t, "Price Drop Alert!", message.Subject)
	assert.NotContains(t, message.HTML, "<a href=")
}
