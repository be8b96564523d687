package wager

import "strconv"

// Card is a playing card drawn from an infinite shoe.
type Card struct {
	Suit   string `json:"suit,omitempty"`
	Rank   string `json:"rank,omitempty"`
	Color  string `json:"color,omitempty"`
	Hidden bool   `json:"hidden,omitempty"`
}

var suits = [...]struct{ symbol, color string }{
	{"♠", "black"},
	{"♥", "red"},
	{"♦", "red"},
	{"♣", "black"},
}

var ranks = [...]string{"A", "2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K"}

// drawCard consumes two draws: suit then rank.
func drawCard(src Source) Card {
	suit := suits[src.IntN(len(suits))]
	return Card{
		Suit:  suit.symbol,
		Rank:  ranks[src.IntN(len(ranks))],
		Color: suit.color,
	}
}

func isFace(rank string) bool {
	return rank == "J" || rank == "Q" || rank == "K"
}

// BlackjackValue totals cards with aces as 11, reducing an ace to 1 while the
// total is over 21.
func BlackjackValue(cards []Card) int {
	value, aces := 0, 0
	for _, c := range cards {
		switch {
		case c.Hidden:
		case c.Rank == "A":
			aces++
			value += 11
		case isFace(c.Rank):
			value += 10
		default:
			n, _ := strconv.Atoi(c.Rank)
			value += n
		}
	}

	for value > 21 && aces > 0 {
		value -= 10
		aces--
	}
	return value
}

// BaccaratValue is the hand total mod 10 with faces as 0 and aces as 1.
func BaccaratValue(cards []Card) int {
	value := 0
	for _, c := range cards {
		switch {
		case c.Rank == "A":
			value++
		case isFace(c.Rank):
		default:
			n, _ := strconv.Atoi(c.Rank)
			value += n
		}
	}
	return value % 10
}
