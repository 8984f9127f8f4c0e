// Package teardown force-cleans a namespace whose resources are stuck in
// Terminating: wedged pods, finalizer-held storage claims and volumes, and
// the namespace object itself.
package teardown

import (
	"context"
	"log/slog"
	"time"
)

const (
	// defaultDrainAttempts bounds the pod drain-wait polling loop.
	defaultDrainAttempts = 6
	// defaultDrainDelay is the fixed pause between drain-wait polls.
	defaultDrainDelay = 5 * time.Second
)

// Config tunes the coordinator's bounded drain-wait loop.
type Config struct {
	// DrainAttempts is the maximum number of pod-count polls.
	DrainAttempts int
	// DrainDelay is the fixed delay between polls.
	DrainDelay time.Duration
}

// StepResult records the outcome of one teardown step. Individual call
// failures are collected rather than halting the step; teardown exists to
// unstick cluster state, where calls routinely fail because the target is
// already gone.
type StepResult struct {
	// Step is the step name.
	Step string
	// Errors lists tolerated call failures observed during the step.
	Errors []error
}

// Report aggregates per-step outcomes for one namespace teardown.
type Report struct {
	// Namespace is the torn-down namespace.
	Namespace string
	// Steps lists step results in execution order.
	Steps []StepResult
}

// Errors returns the total number of tolerated failures across all steps.
func (r *Report) Errors() int {
	n := 0
	for _, s := range r.Steps {
		n += len(s.Errors)
	}
	return n
}

// Coordinator runs the sequential teardown state machine for a namespace.
type Coordinator struct {
	cluster Cluster
	logger  *slog.Logger
	cfg     Config
}

// NewCoordinator constructs a Coordinator over the given cluster access.
func NewCoordinator(cluster Cluster, logger *slog.Logger, cfg Config) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.DrainAttempts <= 0 {
		cfg.DrainAttempts = defaultDrainAttempts
	}
	if cfg.DrainDelay <= 0 {
		cfg.DrainDelay = defaultDrainDelay
	}
	return &Coordinator{cluster: cluster, logger: logger, cfg: cfg}
}

// Teardown runs all five steps for one namespace, strictly in order, treating
// every cluster-mutating call as best-effort. It never fails; tolerated
// errors are collected into the returned report.
func (c *Coordinator) Teardown(ctx context.Context, namespace string) *Report {
	report := &Report{Namespace: namespace}

	c.logger.Info("tearing down namespace", "namespace", namespace)

	report.Steps = append(report.Steps, c.forceTerminate(ctx, namespace))
	report.Steps = append(report.Steps, c.drainWait(ctx, namespace))
	report.Steps = append(report.Steps, c.storageReclaim(ctx, namespace))
	report.Steps = append(report.Steps, c.orphanVolumeUnbind(ctx, namespace))
	report.Steps = append(report.Steps, c.namespaceDelete(ctx, namespace))

	c.logger.Info("namespace teardown finished", "namespace", namespace, "tolerated_errors", report.Errors())

	return report
}

// forceTerminate issues an immediate forced delete for every pod stuck in
// Terminating or Unknown.
func (c *Coordinator) forceTerminate(ctx context.Context, namespace string) StepResult {
	result := StepResult{Step: "force-terminate"}

	pods, err := c.cluster.ListPods(ctx, namespace)
	if err != nil {
		c.logger.Warn("list pods failed", "namespace", namespace, "error", err)
		result.Errors = append(result.Errors, err)
		return result
	}

	for _, pod := range pods {
		if !pod.Stuck() {
			continue
		}
		c.logger.Info("force-deleting stuck pod", "namespace", namespace, "pod", pod.Name, "phase", pod.Phase)
		if err := c.cluster.ForceDeletePod(ctx, namespace, pod.Name); err != nil {
			c.logger.Warn("force delete pod failed", "namespace", namespace, "pod", pod.Name, "error", err)
			result.Errors = append(result.Errors, err)
		}
	}

	return result
}

// drainWait polls the namespace pod count with a fixed delay, re-running
// forceTerminate after each non-zero observation. It stops as soon as a poll
// sees zero pods and never blocks past the attempt bound.
func (c *Coordinator) drainWait(ctx context.Context, namespace string) StepResult {
	result := StepResult{Step: "drain-wait"}

	for attempt := 1; attempt <= c.cfg.DrainAttempts; attempt++ {
		pods, err := c.cluster.ListPods(ctx, namespace)
		if err != nil {
			c.logger.Warn("drain poll failed", "namespace", namespace, "attempt", attempt, "error", err)
			result.Errors = append(result.Errors, err)
		} else if len(pods) == 0 {
			c.logger.Info("namespace drained", "namespace", namespace, "attempt", attempt)
			return result
		} else {
			c.logger.Info("pods still present", "namespace", namespace, "count", len(pods), "attempt", attempt)
			sub := c.forceTerminate(ctx, namespace)
			result.Errors = append(result.Errors, sub.Errors...)
		}

		if attempt == c.cfg.DrainAttempts {
			break
		}
		select {
		case <-ctx.Done():
			result.Errors = append(result.Errors, ctx.Err())
			return result
		case <-time.After(c.cfg.DrainDelay):
		}
	}

	c.logger.Warn("drain attempts exhausted; proceeding with storage cleanup", "namespace", namespace)
	return result
}

// storageReclaim strips finalizers from and deletes every claim in the
// namespace plus each claim's bound volume. A second scan catches claims
// created or re-finalized mid-run.
func (c *Coordinator) storageReclaim(ctx context.Context, namespace string) StepResult {
	result := StepResult{Step: "storage-reclaim"}

	for pass := 0; pass < 2; pass++ {
		claims, err := c.cluster.ListClaims(ctx, namespace)
		if err != nil {
			c.logger.Warn("list claims failed", "namespace", namespace, "error", err)
			result.Errors = append(result.Errors, err)
			continue
		}
		if pass > 0 && len(claims) == 0 {
			break
		}

		for _, claim := range claims {
			c.logger.Info("reclaiming storage claim", "namespace", namespace, "claim", claim.Name, "volume", claim.VolumeName)
			c.tolerate(&result, c.cluster.StripFinalizers(ctx, namespace, "pvc", claim.Name))
			c.tolerate(&result, c.cluster.DeleteNonBlocking(ctx, namespace, "pvc", claim.Name))

			if claim.VolumeName == "" {
				continue
			}
			c.tolerate(&result, c.cluster.ClearClaimRef(ctx, claim.VolumeName))
			c.tolerate(&result, c.cluster.StripFinalizers(ctx, "", "pv", claim.VolumeName))
			c.tolerate(&result, c.cluster.DeleteNonBlocking(ctx, "", "pv", claim.VolumeName))
		}
	}

	return result
}

// orphanVolumeUnbind scans all cluster volumes for claim references pointing
// at the namespace and clears them. This recovers volumes whose claim object
// is already gone but whose reference was never cleared.
func (c *Coordinator) orphanVolumeUnbind(ctx context.Context, namespace string) StepResult {
	result := StepResult{Step: "orphan-volume-unbind"}

	volumes, err := c.cluster.ListVolumes(ctx)
	if err != nil {
		c.logger.Warn("list volumes failed", "error", err)
		result.Errors = append(result.Errors, err)
		return result
	}

	for _, vol := range volumes {
		if vol.ClaimNamespace != namespace {
			continue
		}
		c.logger.Info("unbinding orphaned volume", "volume", vol.Name, "claim", vol.ClaimName, "namespace", namespace)
		c.tolerate(&result, c.cluster.ClearClaimRef(ctx, vol.Name))
		c.tolerate(&result, c.cluster.StripFinalizers(ctx, "", "pv", vol.Name))
	}

	return result
}

// namespaceDelete issues a non-blocking namespace delete, then unconditionally
// strips the namespace's own finalizers both via merge patch and via explicit
// removal, defeating a namespace wedged by an unreachable finalizer controller.
func (c *Coordinator) namespaceDelete(ctx context.Context, namespace string) StepResult {
	result := StepResult{Step: "namespace-delete"}

	c.logger.Info("deleting namespace", "namespace", namespace)
	c.tolerate(&result, c.cluster.DeleteNamespace(ctx, namespace))
	c.tolerate(&result, c.cluster.StripNamespaceFinalizers(ctx, namespace))

	return result
}

// tolerate records a non-nil error into the step result without interrupting
// the step.
func (c *Coordinator) tolerate(result *StepResult, err error) {
	if err == nil {
		return
	}
	c.logger.Debug("tolerated teardown call failure", "step", result.Step, "error", err)
	result.Errors = append(result.Errors, err)
}
