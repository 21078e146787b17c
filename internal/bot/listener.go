package bot

import (
	"context"
	"sync"

	api "github.com/OvyFlash/telegram-bot-api"
	log "github.com/sirupsen/logrus"

	"github.com/voxchat/voxbot/internal/infra"
)

// Listener owns the long-poll update loop as a lifecycle component.
type Listener struct {
	s         Service
	processor *UpdateProcessor

	runMutex  sync.Mutex
	started   bool
	runCancel context.CancelFunc
	workersWg sync.WaitGroup
}

func NewListener(s Service, processor *UpdateProcessor) *Listener {
	return &Listener{
		s:         s,
		processor: processor,
	}
}

func (l *Listener) Start(ctx context.Context) error {
	l.runMutex.Lock()
	defer l.runMutex.Unlock()
	if l.started {
		return nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	l.runCancel = cancel

	updateConfig := api.NewUpdate(0)
	updateConfig.Timeout = 60
	updateChan, errorChan := GetUpdatesChans(runCtx, l.s.GetBot(), updateConfig)

	l.workersWg.Add(1)
	go func() {
		defer l.workersWg.Done()
		for {
			select {
			case <-runCtx.Done():
				return
			case err := <-errorChan:
				if err != nil && runCtx.Err() == nil {
					log.WithError(err).Error("bot api get updates error")
				}
				return
			case update := <-updateChan:
				l.processUpdate(runCtx, &update)
			}
		}
	}()

	l.started = true
	return nil
}

func (l *Listener) processUpdate(ctx context.Context, update *api.Update) {
	defer infra.RecoverPanic("process_update")
	if err := l.processor.Process(ctx, update); err != nil {
		log.WithError(err).Errorln("cant process update")
	}
}

func (l *Listener) Stop(ctx context.Context) error {
	l.runMutex.Lock()
	if !l.started {
		l.runMutex.Unlock()
		return nil
	}
	l.started = false
	cancel := l.runCancel
	l.runMutex.Unlock()

	if cancel != nil {
		cancel()
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		l.workersWg.Wait()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}
