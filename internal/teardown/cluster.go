package teardown

import (
	"context"

	"github.com/deploykit-k8s/deployctl/internal/kube"
)

// Pod is the minimal pod view needed for teardown decisions.
type Pod struct {
	// Name is the pod name.
	Name string
	// Phase is the reported pod phase.
	Phase string
	// Terminating is true when the pod carries a deletion timestamp.
	Terminating bool
}

// Stuck reports whether the pod needs a forced delete.
func (p Pod) Stuck() bool {
	return p.Terminating || p.Phase == "Unknown"
}

// Claim is the minimal PersistentVolumeClaim view needed for teardown.
type Claim struct {
	// Name is the claim name.
	Name string
	// VolumeName is the bound volume, empty for unbound claims.
	VolumeName string
}

// Volume is the minimal PersistentVolume view needed for teardown.
type Volume struct {
	// Name is the volume name.
	Name string
	// ClaimNamespace is the namespace of the referenced claim, if any.
	ClaimNamespace string
	// ClaimName is the name of the referenced claim, if any.
	ClaimName string
}

// Cluster abstracts the cluster calls the coordinator issues. The production
// implementation shells out to kubectl; tests substitute a fake.
type Cluster interface {
	// ListPods returns the pods currently in the namespace.
	ListPods(ctx context.Context, namespace string) ([]Pod, error)
	// ForceDeletePod deletes a pod immediately with a zero grace period.
	ForceDeletePod(ctx context.Context, namespace, name string) error
	// ListClaims returns the PersistentVolumeClaims in the namespace.
	ListClaims(ctx context.Context, namespace string) ([]Claim, error)
	// ListVolumes returns all PersistentVolumes in the cluster.
	ListVolumes(ctx context.Context) ([]Volume, error)
	// StripFinalizers clears the finalizer list on the named resource.
	// An empty namespace targets a cluster-scoped resource.
	StripFinalizers(ctx context.Context, namespace, kind, name string) error
	// ClearClaimRef removes the claim back-reference from a volume.
	ClearClaimRef(ctx context.Context, volumeName string) error
	// DeleteNonBlocking deletes the named resource without waiting.
	DeleteNonBlocking(ctx context.Context, namespace, kind, name string) error
	// DeleteNamespace issues a non-blocking namespace deletion.
	DeleteNamespace(ctx context.Context, name string) error
	// StripNamespaceFinalizers clears the namespace's own finalizers via both
	// a merge patch and an explicit removal of the finalizer list.
	StripNamespaceFinalizers(ctx context.Context, name string) error
}

// podList mirrors the fields of kubectl get pods -o json that teardown reads.
type podList struct {
	Items []struct {
		Metadata struct {
			Name              string `json:"name"`
			DeletionTimestamp string `json:"deletionTimestamp"`
		} `json:"metadata"`
		Status struct {
			Phase string `json:"phase"`
		} `json:"status"`
	} `json:"items"`
}

// claimList mirrors kubectl get pvc -o json.
type claimList struct {
	Items []struct {
		Metadata struct {
			Name string `json:"name"`
		} `json:"metadata"`
		Spec struct {
			VolumeName string `json:"volumeName"`
		} `json:"spec"`
	} `json:"items"`
}

// volumeList mirrors kubectl get pv -o json.
type volumeList struct {
	Items []struct {
		Metadata struct {
			Name string `json:"name"`
		} `json:"metadata"`
		Spec struct {
			ClaimRef struct {
				Namespace string `json:"namespace"`
				Name      string `json:"name"`
			} `json:"claimRef"`
		} `json:"spec"`
	} `json:"items"`
}

const (
	stripFinalizersPatch      = `{"metadata":{"finalizers":null}}`
	clearClaimRefPatch        = `{"spec":{"claimRef":null}}`
	removeFinalizersJSONPatch = `[{"op":"remove","path":"/metadata/finalizers"}]`
	// A namespace wedged in Terminating usually holds the kubernetes
	// finalizer under spec.finalizers, not metadata.finalizers.
	clearSpecFinalizersPatch = `{"spec":{"finalizers":[]}}`
)

// KubectlCluster implements Cluster on top of the kubectl wrapper.
type KubectlCluster struct {
	client *kube.Client
}

// NewKubectlCluster constructs cluster access backed by kubectl.
func NewKubectlCluster(client *kube.Client) *KubectlCluster {
	return &KubectlCluster{client: client}
}

// ListPods returns the pods currently in the namespace.
func (k *KubectlCluster) ListPods(ctx context.Context, namespace string) ([]Pod, error) {
	var raw podList
	if err := k.client.GetJSON(ctx, &raw, "pods", "-n", namespace); err != nil {
		return nil, err
	}
	pods := make([]Pod, 0, len(raw.Items))
	for _, item := range raw.Items {
		pods = append(pods, Pod{
			Name:        item.Metadata.Name,
			Phase:       item.Status.Phase,
			Terminating: item.Metadata.DeletionTimestamp != "",
		})
	}
	return pods, nil
}

// ForceDeletePod deletes a pod immediately with a zero grace period.
func (k *KubectlCluster) ForceDeletePod(ctx context.Context, namespace, name string) error {
	return k.client.DeletePodNow(ctx, namespace, name)
}

// ListClaims returns the PersistentVolumeClaims in the namespace.
func (k *KubectlCluster) ListClaims(ctx context.Context, namespace string) ([]Claim, error) {
	var raw claimList
	if err := k.client.GetJSON(ctx, &raw, "pvc", "-n", namespace); err != nil {
		return nil, err
	}
	claims := make([]Claim, 0, len(raw.Items))
	for _, item := range raw.Items {
		claims = append(claims, Claim{
			Name:       item.Metadata.Name,
			VolumeName: item.Spec.VolumeName,
		})
	}
	return claims, nil
}

// ListVolumes returns all PersistentVolumes in the cluster.
func (k *KubectlCluster) ListVolumes(ctx context.Context) ([]Volume, error) {
	var raw volumeList
	if err := k.client.GetJSON(ctx, &raw, "pv"); err != nil {
		return nil, err
	}
	volumes := make([]Volume, 0, len(raw.Items))
	for _, item := range raw.Items {
		volumes = append(volumes, Volume{
			Name:           item.Metadata.Name,
			ClaimNamespace: item.Spec.ClaimRef.Namespace,
			ClaimName:      item.Spec.ClaimRef.Name,
		})
	}
	return volumes, nil
}

// StripFinalizers clears the finalizer list on the named resource.
func (k *KubectlCluster) StripFinalizers(ctx context.Context, namespace, kind, name string) error {
	return k.client.PatchMerge(ctx, namespace, kind, name, stripFinalizersPatch)
}

// ClearClaimRef removes the claim back-reference from a volume.
func (k *KubectlCluster) ClearClaimRef(ctx context.Context, volumeName string) error {
	return k.client.PatchMerge(ctx, "", "pv", volumeName, clearClaimRefPatch)
}

// DeleteNonBlocking deletes the named resource without waiting.
func (k *KubectlCluster) DeleteNonBlocking(ctx context.Context, namespace, kind, name string) error {
	return k.client.DeleteNonBlocking(ctx, namespace, kind, name)
}

// DeleteNamespace issues a non-blocking namespace deletion.
func (k *KubectlCluster) DeleteNamespace(ctx context.Context, name string) error {
	return k.client.DeleteNonBlocking(ctx, "", "namespace", name)
}

// StripNamespaceFinalizers clears the namespace's own finalizers via merge
// patch, explicit JSON-patch removal, and a spec.finalizers wipe; no single
// patch form unsticks every Terminating namespace. All three are always
// issued; the first failure is reported.
func (k *KubectlCluster) StripNamespaceFinalizers(ctx context.Context, name string) error {
	errs := []error{
		k.client.PatchMerge(ctx, "", "namespace", name, stripFinalizersPatch),
		k.client.PatchJSON(ctx, "", "namespace", name, removeFinalizersJSONPatch),
		k.client.PatchMerge(ctx, "", "namespace", name, clearSpecFinalizersPatch),
	}
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
