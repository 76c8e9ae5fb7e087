package topicbook

import "context"

// Submitter creates generation tasks.
type Submitter interface {
	Submit(ctx context.Context, req TaskRequest) (TaskID, error)
}

// Streamer opens the live status channel for a task.
type Streamer interface {
	OpenStatus(ctx context.Context, id TaskID) (Channel, error)
}

// Channel is a unidirectional server-to-client event stream.
//
// Next blocks until the next event arrives and returns io.EOF once the
// server closes the stream. Close may be called any number of times and
// unblocks a pending Next.
type Channel interface {
	Next() (Event, error)
	Close() error
}

// Catalog lists and fetches completed artifacts.
type Catalog interface {
	ListBooks(ctx context.Context) ([]string, error)
	GetBook(ctx context.Context, filename string) (Book, error)
}
