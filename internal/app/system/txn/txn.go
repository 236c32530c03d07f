// Package txn runs multi-document work inside a MongoDB transaction when the
// deployment supports one (replica set / mongos), and falls back to plain
// sequential execution on standalone servers. Accepting a friend request
// relies on this: the request status flip and both friend-set updates must
// commit together.
package txn

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Run executes fn inside a transaction on db's client. When the server does
// not support transactions, fn runs once without one and a warning is logged;
// partial application is then possible, which matches the backing store's
// native guarantees on such deployments.
func Run(ctx context.Context, db *mongo.Database, log *zap.Logger, fn func(ctx context.Context) error) error {
	sess, err := db.Client().StartSession()
	if err != nil {
		if IsNotSupported(err) {
			return runPlain(ctx, log, err, fn)
		}
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err != nil && IsNotSupported(err) {
		return runPlain(ctx, log, err, fn)
	}
	return err
}

func runPlain(ctx context.Context, log *zap.Logger, cause error, fn func(ctx context.Context) error) error {
	if log != nil {
		log.Warn("transactions unavailable, running without atomicity",
			zap.Error(cause))
	}
	return fn(ctx)
}

// Transaction-related server error codes:
//
//	20  IllegalOperation (standalone servers)
//	51  no such transaction support
//	263 OperationNotSupportedInTransaction
var notSupportedCodes = map[int32]bool{20: true, 51: true, 263: true}

// IsNotSupported reports whether err indicates the server cannot run
// multi-document transactions (as opposed to the transaction merely failing).
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}

	if ce, ok := err.(mongo.CommandError); ok {
		return notSupportedCodes[ce.Code]
	}

	// Drivers and proxies word these differently; require at least two
	// independent hints before treating the error as "unsupported".
	msg := strings.ToLower(err.Error())
	hints := 0
	for _, kw := range []string{"transaction", "session", "replica set", "not supported", "illegal operation"} {
		if strings.Contains(msg, kw) {
			hints++
		}
	}
	return hints >= 2
}
