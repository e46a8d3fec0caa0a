// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package loadtest

import (
	"math/rand/v2"

	"github.com/google/uuid"
)

// Message is a single outbound text message.
type Message struct {
	ID          uuid.UUID
	Destination string // ddd-ddd-dddd
	Body        string
}

// Batch is the unit moved through the channel.
type Batch struct {
	Messages []Message
}

// Len returns the number of messages in the batch.
func (b Batch) Len() int {
	return len(b.Messages)
}

const (
	digits    = "0123456789"
	printable = digits +
		"abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ" +
		"!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~" +
		" \t\n\r\x0b\x0c"
)

// Generator builds random messages. Not safe for concurrent use.
type Generator struct {
	rng    *rand.Rand
	length int
}

// NewGenerator returns a generator producing bodies of length bytes.
func NewGenerator(seed uint64, length int) *Generator {
	return &Generator{
		rng:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		length: length,
	}
}

// Message returns a new random message.
func (g *Generator) Message() Message {
	dest := g.pick(12, digits)
	dest[3], dest[7] = '-', '-'
	return Message{
		ID:          uuid.New(),
		Destination: string(dest),
		Body:        string(g.pick(g.length, printable)),
	}
}

// Batch returns a batch of n random messages.
func (g *Generator) Batch(n int) Batch {
	msgs := make([]Message, n)
	for i := range msgs {
		msgs[i] = g.Message()
	}
	return Batch{Messages: msgs}
}

func (g *Generator) pick(n int, charset string) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = charset[g.rng.IntN(len(charset))]
	}
	return b
}
