package cats

import (
	"context"
	"sync"

	"cat-registry/internal/ports/identity"

	"golang.org/x/sync/singleflight"
)

// ownerLoader resuelve el campo owner contra el auth service con scope de
// request: N registros del mismo dueño cuestan un solo lookup dentro de una
// misma respuesta. No hay cache entre requests; el loader se crea por request
// y se descarta al terminar.
//
// La falla de un lookup anula solo el owner de ese registro (se cachea en
// negativo para no insistir contra un upstream caído durante la misma
// respuesta); los demás campos y registros hermanos no se ven afectados.
type ownerLoader struct {
	client identity.Client
	sf     singleflight.Group

	mu    sync.Mutex
	users map[string]identity.User
	miss  map[string]struct{}
}

func newOwnerLoader(client identity.Client) *ownerLoader {
	return &ownerLoader{
		client: client,
		users:  make(map[string]identity.User),
		miss:   make(map[string]struct{}),
	}
}

func (l *ownerLoader) Resolve(ctx context.Context, ownerUserID string) (identity.User, bool) {
	if l == nil || l.client == nil || ownerUserID == "" {
		return identity.User{}, false
	}

	l.mu.Lock()
	if u, ok := l.users[ownerUserID]; ok {
		l.mu.Unlock()
		return u, true
	}
	if _, failed := l.miss[ownerUserID]; failed {
		l.mu.Unlock()
		return identity.User{}, false
	}
	l.mu.Unlock()

	v, err, _ := l.sf.Do(ownerUserID, func() (any, error) {
		return l.client.GetUser(ctx, ownerUserID)
	})

	l.mu.Lock()
	defer l.mu.Unlock()

	if err != nil {
		l.miss[ownerUserID] = struct{}{}
		return identity.User{}, false
	}

	u := v.(identity.User)
	l.users[ownerUserID] = u
	return u, true
}
