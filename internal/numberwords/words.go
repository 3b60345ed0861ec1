// Package numberwords spells numbers 0-100 in Turkish and holds the fixed
// narration phrases of the numbers screen.
package numberwords

import (
	"fmt"
	"strconv"
)

var small = [...]string{
	"sıfır", "bir", "iki", "üç", "dört", "beş", "altı", "yedi", "sekiz", "dokuz",
	"on", "on bir", "on iki", "on üç", "on dört", "on beş", "on altı", "on yedi", "on sekiz", "on dokuz",
	"yirmi",
}

// indexed by n/10
var tens = [...]string{
	"", "on", "yirmi", "otuz", "kırk", "elli", "altmış", "yetmiş", "seksen", "doksan", "yüz",
}

// WordFor returns the spoken form of n. Values outside 0-100 fall back to digits.
func WordFor(n int) string {
	if n >= 0 && n < len(small) {
		return small[n]
	}
	if n < 0 || n > 100 {
		return strconv.Itoa(n)
	}
	t, o := n/10, n%10
	if o == 0 {
		return tens[t]
	}
	return tens[t] + " " + small[o]
}

// Fixed narration lines.
const (
	PhraseSuccess   = "Aferin!"
	PhraseTryAgain  = "Bir daha dene!"
	PhraseNewRecord = "Yeni rekor! Harikasın!"
	PhraseGameOver  = "Süre bitti!"
)

// TaskPrompt asks the learner to find n.
func TaskPrompt(n int) string {
	return fmt.Sprintf("%s sayısını bulabilir misin?", WordFor(n))
}

// HintReveal names the answer after a hint.
func HintReveal(n int) string {
	return fmt.Sprintf("İpucu: %s", WordFor(n))
}

// ThisIs introduces a number in detail view.
func ThisIs(n int) string {
	return fmt.Sprintf("Bu %s!", WordFor(n))
}

// Score reads out a final score.
func Score(n int) string {
	return fmt.Sprintf("Puanın %s.", WordFor(n))
}
