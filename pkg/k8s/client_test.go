package k8s

import (
	"context"
	"strings"
	"testing"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"
)

func pod(name string, labels map[string]string, containers ...string) *corev1.Pod {
	p := &corev1.Pod{ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: "prod", Labels: labels}}
	for _, c := range containers {
		p.Spec.Containers = append(p.Spec.Containers, corev1.Container{Name: c})
	}
	return p
}

func TestPodLogsByName(t *testing.T) {
	c := NewWithClientset(fake.NewSimpleClientset(pod("api-0", nil, "app", "sidecar")))

	files, err := c.PodLogs(context.Background(), LogOptions{Namespace: "prod", Pods: []string{"api-0"}, TailLines: 100})
	if err != nil {
		t.Fatalf("PodLogs: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("files = %d", len(files))
	}
	if files[0].Filename != "prod/api-0/app" || files[1].Filename != "prod/api-0/sidecar" {
		t.Errorf("filenames = %s, %s", files[0].Filename, files[1].Filename)
	}
	if files[0].Content == "" {
		t.Error("expected log content")
	}
}

func TestPodLogsBySelector(t *testing.T) {
	cs := fake.NewSimpleClientset(
		pod("api-0", map[string]string{"app": "api"}, "app"),
		pod("api-1", map[string]string{"app": "api"}, "app"),
		pod("db-0", map[string]string{"app": "db"}, "db"),
	)
	files, err := NewWithClientset(cs).PodLogs(context.Background(), LogOptions{Namespace: "prod", Selector: "app=api"})
	if err != nil {
		t.Fatalf("PodLogs: %v", err)
	}
	if len(files) != 2 {
		t.Errorf("files = %+v", files)
	}
}

func TestPodLogsDeployment(t *testing.T) {
	deploy := &appsv1.Deployment{
		ObjectMeta: metav1.ObjectMeta{Name: "api", Namespace: "prod"},
		Spec: appsv1.DeploymentSpec{
			Selector: &metav1.LabelSelector{MatchLabels: map[string]string{"app": "api"}},
		},
	}
	cs := fake.NewSimpleClientset(deploy, pod("api-0", map[string]string{"app": "api"}, "app"))

	files, err := NewWithClientset(cs).PodLogs(context.Background(), LogOptions{Namespace: "prod", Pods: []string{"deployment/api"}})
	if err != nil {
		t.Fatalf("PodLogs: %v", err)
	}
	if len(files) != 1 || files[0].Filename != "prod/api-0/app" {
		t.Errorf("files = %+v", files)
	}
}

func TestPodLogsRequiresTarget(t *testing.T) {
	if _, err := NewWithClientset(fake.NewSimpleClientset()).PodLogs(context.Background(), LogOptions{Namespace: "prod"}); err == nil {
		t.Error("expected error without pods or selector")
	}
}

func TestPodLogsMissingPod(t *testing.T) {
	_, err := NewWithClientset(fake.NewSimpleClientset()).PodLogs(context.Background(), LogOptions{Namespace: "prod", Pods: []string{"ghost"}})
	if err == nil || !strings.Contains(err.Error(), "ghost") {
		t.Errorf("err = %v", err)
	}
}

func TestWarningEvents(t *testing.T) {
	ev := &corev1.Event{
		ObjectMeta:     metav1.ObjectMeta{Name: "e1", Namespace: "prod"},
		InvolvedObject: corev1.ObjectReference{Kind: "Pod", Name: "api-0"},
		Reason:         "BackOff",
		Message:        "Back-off restarting failed container",
		Type:           corev1.EventTypeWarning,
	}
	normal := ev.DeepCopy()
	normal.Name, normal.Type, normal.Reason = "e2", corev1.EventTypeNormal, "Pulled"

	c := NewWithClientset(fake.NewSimpleClientset(ev, normal))
	got, err := c.warningEvents(context.Background(), "prod")
	if err != nil {
		t.Fatalf("warningEvents: %v", err)
	}
	if !strings.Contains(got.Content, "pod/api-0 BackOff") || strings.Contains(got.Content, "Pulled") {
		t.Errorf("content = %q", got.Content)
	}
	if got.Filename != "prod/events" {
		t.Errorf("filename = %s", got.Filename)
	}
}
