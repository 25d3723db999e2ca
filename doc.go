/*
Package musik plays decoded audio through an output device.

Concept

Playback is a small pipeline with two stages:

    Pump - the origin of signal, usually a decoder reading a file;
    Sink - the destination of signal, usually an output device queue;

A pipe has exactly one pump and one or more sinks. Every stage runs in its
own goroutine and stages are connected with channels, the pipeline pattern
explained in the go blog https://blog.golang.org/pipelines.

Components

Pump and Sink methods are called when the pipe is created. They receive
the signal properties, allocate resources and return the closures which
are called for every buffer during the run. Components can also implement
hooks:

    Resetter - called before the run starts;
    Flusher - called when the run is done and all buffers were consumed;
    Interrupter - called when the run is cancelled or failed.

Hooks release resources. For an output device the Flush hook is where
queued audio is drained.

Execution

    p, err := musik.New(bufferSize,
        musik.WithPump(pump),
        musik.WithSinks(sink),
    )
    err = musik.Wait(p.Run(ctx))

Wait blocks until the pump is exhausted and every sink has flushed, the
context is done or any component failed.
*/
package musik
