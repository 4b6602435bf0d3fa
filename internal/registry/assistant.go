package registry

import (
	"strconv"

	"github.com/petasbytes/go-assistants/memory"
)

// Assistant is a named configuration owning independent threads. The name
// is fixed at creation; everything else changes through the Registry so
// each change is persisted.
type Assistant struct {
	name         string
	model        string
	instructions string
	credential   string
	threads      *memory.Threads
}

func newAssistant(name, model, instructions, credential string) *Assistant {
	return &Assistant{
		name:         name,
		model:        model,
		instructions: instructions,
		credential:   credential,
		threads:      memory.NewThreads(),
	}
}

func (a *Assistant) Name() string         { return a.name }
func (a *Assistant) Model() string        { return a.model }
func (a *Assistant) Instructions() string { return a.instructions }

// Credential returns the stored secret. It must never be logged.
func (a *Assistant) Credential() string { return a.credential }

// ThreadIDs returns thread ids in creation order.
func (a *Assistant) ThreadIDs() []string {
	ids := make([]string, 0, a.threads.Len())
	for pair := a.threads.Oldest(); pair != nil; pair = pair.Next() {
		ids = append(ids, pair.Key)
	}
	return ids
}

// Thread returns the transcript for id. Absence is the not-found signal.
func (a *Assistant) Thread(id string) (*memory.Transcript, bool) {
	return a.threads.Get(id)
}

// nextThreadID synthesizes thread_<n+1> from the current thread count. It is
// unique per assistant only while no thread id of that form was chosen
// explicitly.
func (a *Assistant) nextThreadID() string {
	return "thread_" + strconv.Itoa(a.threads.Len()+1)
}

func (a *Assistant) record() *memory.AssistantRecord {
	return &memory.AssistantRecord{
		APIKey:       a.credential,
		Model:        a.model,
		Instructions: a.instructions,
		Threads:      a.threads,
	}
}

func fromRecord(name string, rec *memory.AssistantRecord) *Assistant {
	a := &Assistant{
		name:         name,
		model:        rec.Model,
		instructions: rec.Instructions,
		credential:   rec.APIKey,
		threads:      rec.Threads,
	}
	if a.threads == nil {
		a.threads = memory.NewThreads()
	}
	return a
}
