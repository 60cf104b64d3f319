package kubeclient

import (
	"context"
	"io"
	"log"
	"sync"
)

/**
a running log follow. The copy happens on its own goroutine; Cancel tears the request down and waits for
the copy to finish so nothing writes to the output afterwards
*/
type podLogStream struct {
	body    io.ReadCloser
	cancel  context.CancelFunc
	done    chan struct{}
	once    sync.Once
	copyErr error
}

func newPodLogStream(body io.ReadCloser, out io.Writer, cancel context.CancelFunc) *podLogStream {
	s := &podLogStream{
		body:   body,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go s.copyTo(out)
	return s
}

func (s *podLogStream) copyTo(out io.Writer) {
	defer close(s.done)
	_, s.copyErr = io.Copy(out, s.body)
	if s.copyErr != nil && s.copyErr != context.Canceled {
		log.Printf("DEBUG podLogStream ended: %s", s.copyErr)
	}
}

func (s *podLogStream) Cancel() {
	s.once.Do(func() {
		s.cancel()
		s.body.Close()
		<-s.done
	})
}

/**
closed once the stream has stopped copying, for whatever reason
*/
func (s *podLogStream) Done() <-chan struct{} {
	return s.done
}
