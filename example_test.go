package musik_test

import (
	"context"
	"fmt"

	"github.com/pipelined/musik"
	"github.com/pipelined/musik/mock"
)

// Pump 4 buffers of stereo signal into two sinks.
func Example() {
	pump := &mock.Pump{
		Limit:       4 * 512,
		NumChannels: 2,
		SampleRate:  44100,
	}
	first, second := &mock.Sink{Discard: true}, &mock.Sink{Discard: true}
	p, err := musik.New(512,
		musik.WithPump(pump),
		musik.WithSinks(first, second),
	)
	if err != nil {
		fmt.Println(err)
		return
	}
	if err := musik.Wait(p.Run(context.Background())); err != nil {
		fmt.Println(err)
		return
	}
	messages, samples := second.Count()
	fmt.Println(messages, samples, p.State())
	// Output: 4 2048 terminated
}
