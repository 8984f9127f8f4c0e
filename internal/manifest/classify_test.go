package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		content string
		group   Group
		want    Classification
	}{
		{
			name:    "empty file",
			content: "",
			group:   GroupStorage,
			want:    ClassEmpty,
		},
		{
			name:    "whitespace only",
			content: "\n\n   \n",
			group:   GroupMonitoring,
			want:    ClassEmpty,
		},
		{
			name: "plain deployment",
			content: `apiVersion: apps/v1
kind: Deployment
metadata:
  name: web
spec:
  replicas: 2
`,
			group: GroupMonitoring,
			want:  ClassPlain,
		},
		{
			name: "dump with top-level status",
			content: `apiVersion: v1
kind: Pod
metadata:
  name: web-0
status:
  phase: Running
  hostIP: 10.0.0.4
`,
			group: GroupMonitoring,
			want:  ClassRuntimeDump,
		},
		{
			name: "dump with resourceVersion",
			content: `apiVersion: v1
kind: Service
metadata:
  name: web
  resourceVersion: "123456"
`,
			group: GroupIntegrations,
			want:  ClassRuntimeDump,
		},
		{
			name: "dump with uid",
			content: `apiVersion: v1
kind: ConfigMap
metadata:
  name: cfg
  uid: 9bf2a8e1-0c6d-4a3e-8f2a-1b2c3d4e5f60
`,
			group: GroupExtra,
			want:  ClassRuntimeDump,
		},
		{
			name: "dump with ownerReferences",
			content: `apiVersion: v1
kind: Pod
metadata:
  name: web-0
  ownerReferences:
    - kind: ReplicaSet
      name: web-abc123
`,
			group: GroupNodeWorkloads,
			want:  ClassRuntimeDump,
		},
		{
			name: "placeholder token in storage group",
			content: `apiVersion: v1
kind: PersistentVolume
metadata:
  name: data-pv
spec:
  nodeAffinity:
    required:
      nodeSelectorTerms:
        - matchExpressions:
            - key: kubernetes.io/hostname
              operator: In
              values:
                - REPLACE_WITH_WORKER_NODE
`,
			group: GroupStorage,
			want:  ClassParameterized,
		},
		{
			name: "example hostname in storage group",
			content: `apiVersion: v1
kind: PersistentVolume
metadata:
  name: data-pv
spec:
  local:
    path: /mnt/data
  nodeAffinity:
    required:
      nodeSelectorTerms:
        - matchExpressions:
            - key: kubernetes.io/hostname
              operator: In
              values:
                - k8s-worker-01.example.com
`,
			group: GroupStorage,
			want:  ClassParameterized,
		},
		{
			name: "placeholder token outside storage group is plain",
			content: `apiVersion: v1
kind: ConfigMap
metadata:
  name: docs
data:
  note: REPLACE_WITH_WORKER_NODE
`,
			group: GroupMonitoring,
			want:  ClassPlain,
		},
		{
			name: "dump wins over placeholder in storage group",
			content: `apiVersion: v1
kind: PersistentVolume
metadata:
  name: data-pv
  uid: 9bf2a8e1-0c6d-4a3e-8f2a-1b2c3d4e5f60
spec:
  values:
    - REPLACE_WITH_WORKER_NODE
status:
  phase: Bound
`,
			group: GroupStorage,
			want:  ClassRuntimeDump,
		},
		{
			name: "second document carries status",
			content: `apiVersion: v1
kind: ConfigMap
metadata:
  name: cfg
---
apiVersion: v1
kind: Pod
metadata:
  name: web-0
status:
  containerStatuses: []
`,
			group: GroupExtra,
			want:  ClassRuntimeDump,
		},
		{
			name: "nested status field is not a dump",
			content: `apiVersion: apps/v1
kind: Deployment
metadata:
  name: web
spec:
  template:
    metadata:
      labels:
        status: active
`,
			group: GroupExtra,
			want:  ClassPlain,
		},
		{
			name:    "unparseable content with dump marker",
			content: "  {not yaml\nresourceVersion: \"99\"\n\t",
			group:   GroupExtra,
			want:    ClassRuntimeDump,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify([]byte(tt.content), tt.group))
		})
	}
}
