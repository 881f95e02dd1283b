// Package autopilot plays snake sessions through the REST API.
//
// Strategy steers along the shortest path to the food and falls back to the
// move that keeps the most free cells reachable. Play drives a manual session
// one tick at a time, so the bot is never racing the clock.
//
//	client := autopilot.NewClient("http://localhost:8080")
//	client.CreateSession(ctx, "small")
//	result, err := autopilot.Play(ctx, client, autopilot.NewStrategy(), autopilot.Options{MaxTicks: 3000})
package autopilot
