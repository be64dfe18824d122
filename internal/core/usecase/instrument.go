package usecase

import "time"

// noopInstruments is the default instrumentation target of every usecase;
// bootstrap swaps in the real registry via the WithInstruments setters.
type noopInstruments struct{}

func (noopInstruments) ObserveFileIngested(string, time.Duration) {}
func (noopInstruments) AddChunksIndexed(int)                      {}
func (noopInstruments) ObserveRetrieval(time.Duration, int)       {}
func (noopInstruments) IncContextSwitch(string)                   {}
func (noopInstruments) IncFormSlot(string)                        {}
