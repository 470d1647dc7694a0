// SPDX-License-Identifier: EPL-2.0

// Package mixer schedules offline renders of several audio sources through a
// mixing engine.
//
// A Session owns a fixed processing format, a registry of named sources and
// a reusable output block. Each source has a volume and a pending frame count:
// Append adds to it and a successful Render charges one block to every source
// that had a full block pending. Summation itself belongs to the Engine.
//
// # Lifecycle
//
//	sess, _ := mixer.New(engine, mixer.DefaultConfig(44100, 2))
//	sess.Attach("a")
//	sess.Append("a", block) // 1024 frames at 44100Hz/2ch
//	if err := sess.Start(); err != nil {
//	    return err
//	}
//	status := sess.Render(nil) // RenderSuccess, sink called once
//	sess.Stop()
//
// Sessions move from StateConfigured to StateRunning on Start and to
// StateStopped on Stop. Stop keeps sources and pending counts; sources must be
// detached explicitly.
//
// # Render Eligibility
//
// With block size B, Render only renders when at least one source has B or
// more frames pending. Sources below B still play through the engine, padded
// with silence, but are not charged. When nothing is eligible Render returns
// RenderError without touching the engine; callers append more and retry.
//
// # Volumes
//
// Volumes are linear gains in [0, MaxVolume]. NaN, negative and larger values
// are rejected and leave the current gain in place.
//
// # Concurrency
//
// Every method locks the session, and the engine's render runs under that
// lock. The sink is called after the lock is released, so it may call back
// into the session. The block it receives is only valid until the next
// render.
package mixer
