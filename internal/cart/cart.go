package cart

import (
	"time"

	"github.com/google/uuid"
)

// Money is a monetary value in minor units.
type Money = int64

// Line is one (product, size, color) selection with a quantity.
// UnitPrice is the price snapshot taken when the line was added.
type Line struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	UnitPrice Money  `json:"unit_price"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

// SameIdentity reports whether two lines refer to the same selection.
// Identity is (product, size, color); quantities for equal identity coalesce.
func (l Line) SameIdentity(other Line) bool {
	return l.ProductID == other.ProductID && l.Size == other.Size && l.Color == other.Color
}

type Cart struct {
	OwnerID     string    `json:"owner_id"`
	Lines       []Line    `json:"lines"`
	TotalItems  int       `json:"total_items"`
	TotalAmount Money     `json:"total_amount"`
	Seq         uint64    `json:"seq"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Command is the tagged union of cart mutations.
type Command interface{ isCommand() }

type Add struct {
	ProductID string
	Quantity  int
	UnitPrice Money
	Size      string
	Color     string
}

type Remove struct {
	LineID string
}

type SetQuantity struct {
	LineID   string
	Quantity int
}

type Clear struct{}

func (Add) isCommand()         {}
func (Remove) isCommand()      {}
func (SetQuantity) isCommand() {}
func (Clear) isCommand()       {}

// Apply processes one command against a cart and returns the new cart state.
// It is pure: the input cart is not mutated, and totals are always recomputed
// from the lines rather than patched.
func Apply(c Cart, cmd Command) Cart {
	next := c
	next.Lines = make([]Line, len(c.Lines))
	copy(next.Lines, c.Lines)

	switch cmd := cmd.(type) {
	case Add:
		if cmd.Quantity <= 0 {
			break
		}
		candidate := Line{
			ProductID: cmd.ProductID,
			Quantity:  cmd.Quantity,
			UnitPrice: cmd.UnitPrice,
			Size:      cmd.Size,
			Color:     cmd.Color,
		}
		merged := false
		for i := range next.Lines {
			if next.Lines[i].SameIdentity(candidate) {
				next.Lines[i].Quantity += cmd.Quantity
				merged = true
				break
			}
		}
		if !merged {
			candidate.ID = uuid.NewString()
			next.Lines = append(next.Lines, candidate)
		}

	case Remove:
		next.Lines = removeLine(next.Lines, cmd.LineID)

	case SetQuantity:
		if cmd.Quantity <= 0 {
			// Setting a line to zero removes it, it never lingers.
			next.Lines = removeLine(next.Lines, cmd.LineID)
			break
		}
		for i := range next.Lines {
			if next.Lines[i].ID == cmd.LineID {
				next.Lines[i].Quantity = cmd.Quantity
				break
			}
		}

	case Clear:
		next.Lines = nil
	}

	next.TotalItems, next.TotalAmount = totals(next.Lines)
	next.UpdatedAt = time.Now()
	return next
}

func removeLine(lines []Line, lineID string) []Line {
	for i, l := range lines {
		if l.ID == lineID {
			return append(lines[:i], lines[i+1:]...)
		}
	}
	return lines
}

func totals(lines []Line) (items int, amount Money) {
	for _, l := range lines {
		items += l.Quantity
		amount += Money(l.Quantity) * l.UnitPrice
	}
	return items, amount
}

// Recalculate returns the cart with totals recomputed from its lines. Used
// when lines were assembled outside Apply, e.g. loaded from storage.
func Recalculate(c Cart) Cart {
	c.TotalItems, c.TotalAmount = totals(c.Lines)
	return c
}

// FindLine returns the line with the given id, if present.
func (c Cart) FindLine(lineID string) (Line, bool) {
	for _, l := range c.Lines {
		if l.ID == lineID {
			return l, true
		}
	}
	return Line{}, false
}
