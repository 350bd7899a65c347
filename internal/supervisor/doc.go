// Weddingbook - Wedding Service Booking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/weddingbook

/*
Package supervisor runs every long-lived goroutine of the server under a
suture v4 tree.

	RootSupervisor ("weddingbook")
	├── DataSupervisor ("data-layer")
	│   └── store.GarbageCollector ("store-gc")
	├── WorkerSupervisor ("worker-layer")
	│   ├── emailqueue.Queue ("email-queue")
	│   └── auth.Accounts ("account-throttle")
	└── APISupervisor ("api-layer")
	    └── services.HTTPServerService ("http-server")

A service that returns an error is restarted with suture's backoff. Each
layer counts failures on its own, so a mail transport that keeps failing
backs off without touching the HTTP server.

Supervisor events go to the zerolog logger through sutureslog and the
logging package's slog adapter:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(),
	    supervisor.TreeConfigFrom(&cfg.Supervisor))
	tree.AddWorkerService(queue)
	tree.AddAPIService(services.NewHTTPServerService(srv, srv.Addr, timeout, logger))
	err = tree.Serve(ctx)

Cancelling ctx stops every service; UnstoppedServiceReport names the ones
that outlived the shutdown timeout.
*/
package supervisor
