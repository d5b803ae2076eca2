package main

import "net/http"

func (app *application) routes() *http.ServeMux {
	mux := http.NewServeMux()

	var (
		common = func(next http.Handler) http.Handler {
			return app.logAndTraceRequest(secureHeaders(app.crossOriginProtection(
				commonContext(app.timeout(next)))))
		}
		noAuth = func(next http.Handler) http.Handler {
			return app.recoverPanic(common(next))
		}
		session = func(next http.Handler) http.Handler {
			return app.recoverPanic(noCache(app.sessionManager.LoadAndSave(
				app.identifySession(common(next)))))
		}
		mustSession = func(next http.Handler) http.Handler {
			return session(app.mustRegister(next))
		}
	)

	mux.Handle("POST /api/register", session(http.HandlerFunc(app.registerPOST)))
	mux.Handle("GET /api/healthy", session(http.HandlerFunc(app.healthy)))
	mux.Handle("GET /api/test/timeout", noAuth(http.HandlerFunc(app.testTimeout)))

	mux.Handle("POST /api/bodyweight", mustSession(http.HandlerFunc(app.bodyweightPOST)))

	mux.Handle("POST /api/workouts/start", mustSession(http.HandlerFunc(app.workoutStartPOST)))
	mux.Handle("GET /api/workouts/current", mustSession(http.HandlerFunc(app.workoutCurrentGET)))
	mux.Handle("POST /api/workouts/sets", mustSession(http.HandlerFunc(app.workoutSetPOST)))
	mux.Handle("POST /api/workouts/complete", mustSession(http.HandlerFunc(app.workoutCompletePOST)))

	mux.Handle("GET /api/progress", mustSession(http.HandlerFunc(app.progressGET)))
	mux.Handle("GET /api/recommendations", mustSession(http.HandlerFunc(app.recommendationsGET)))

	mux.Handle("GET /api/exercises", session(http.HandlerFunc(app.exercisesGET)))
	mux.Handle("GET /api/exercises/{exerciseID}", session(http.HandlerFunc(app.exerciseGET)))
	mux.Handle("GET /exercises/{exerciseID}/info", session(http.HandlerFunc(app.exerciseInfoGET)))

	mux.Handle("GET /api/charms", session(http.HandlerFunc(app.charmsGET)))
	mux.Handle("GET /api/charms/equipped", mustSession(http.HandlerFunc(app.equippedCharmsGET)))
	mux.Handle("PUT /api/charms/equipped", mustSession(http.HandlerFunc(app.equippedCharmsPUT)))

	return mux
}
