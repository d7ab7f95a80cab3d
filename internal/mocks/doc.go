// Package mocks provides shared mock implementations of the service
// interfaces consumed by the HTTP layer.
//
// Each mock exposes one function field per method. A test sets only the
// fields it cares about; unset methods return the mock's default values.
//
//	svc := &mocks.MockTaskService{
//	    GetOwnedTaskFn: func(ctx context.Context, id, callerID uuid.UUID) (*domain.Task, error) {
//	        return nil, service.ErrNotOwned
//	    },
//	}
//
// Mocks that are only needed inside one package live in that package's
// mocks_test.go instead.
package mocks
