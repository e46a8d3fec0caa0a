// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package loadtest

import (
	"context"
	"fmt"
	"runtime"

	"code.hybscloud.com/bchan"
)

// yieldEvery is the number of batches a producer sends between yields.
const yieldEvery = 10

// Producer generates batches and sends them into the channel.
type Producer struct {
	out       bchan.Producer[Batch]
	gen       *Generator
	collector *Collector
	batches   int
	batchSize int
}

// NewProducer returns a producer sending batches batches of batchSize
// messages each.
func NewProducer(out bchan.Producer[Batch], gen *Generator, collector *Collector, batches, batchSize int) *Producer {
	return &Producer{
		out:       out,
		gen:       gen,
		collector: collector,
		batches:   batches,
		batchSize: batchSize,
	}
}

// Run sends every batch. It stops at the first failed Send.
func (p *Producer) Run(ctx context.Context) error {
	for i := range p.batches {
		batch := p.gen.Batch(p.batchSize)
		if err := p.out.Send(ctx, batch); err != nil {
			return fmt.Errorf("loadtest: send batch %d: %w", i, err)
		}
		p.collector.Produced(batch.Len())
		if (i+1)%yieldEvery == 0 {
			runtime.Gosched()
		}
	}
	return nil
}
