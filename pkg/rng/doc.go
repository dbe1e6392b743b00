// Package rng provides deterministic random number generation for the
// engine's randomized stages (currently the flow simulation).
//
// # Overview
//
// The RNG type derives stage-specific seeds from a master seed so each
// stage (e.g. visitor flow) gets an independent, reproducible
// sequence without stages influencing one another.
//
// # Sub-Seed Derivation
//
// Each RNG derives its seed using SHA-256:
//
//	seed_stage = H(masterSeed, stageName, configHash)
//
// where:
//   - masterSeed: the session's configured seed
//   - stageName: the stage identifier (e.g. "flow_simulation")
//   - configHash: hash of the configuration in effect for that stage
//
// This ensures:
//  1. Same inputs always produce the same RNG sequence (determinism)
//  2. Different stages get independent random sequences (isolation)
//  3. Config changes result in different sequences (sensitivity)
//
// # Usage
//
//	configHash := sha256.Sum256([]byte(configJSON))
//	flowRNG := rng.NewRNG(masterSeed, "flow_simulation", configHash[:])
//
//	start := entrances[flowRNG.Intn(len(entrances))]
//	if flowRNG.Float64() < 0.7 {
//	    // bias toward target
//	}
//
// # Thread Safety
//
// RNG instances are NOT thread-safe. A session uses one RNG per stage,
// called from a single goroutine.
package rng
