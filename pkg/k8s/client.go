package k8s

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"

	"github.com/helmcode/logtriage/pkg/model"
)

// maxLogBytes caps what is read from a single container.
const maxLogBytes = 2 << 20

type Client struct {
	clientset kubernetes.Interface
}

// NewClient creates a new Kubernetes client
func NewClient(kubeconfig string) (*Client, error) {
	// Try in-cluster config first
	config, err := rest.InClusterConfig()
	if err != nil {
		// Fall back to kubeconfig
		config, err = clientcmd.BuildConfigFromFlags("", kubeconfig)
		if err != nil {
			return nil, fmt.Errorf("failed to create config: %w", err)
		}
	}

	clientset, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create clientset: %w", err)
	}
	return NewWithClientset(clientset), nil
}

func NewWithClientset(cs kubernetes.Interface) *Client {
	return &Client{clientset: cs}
}

// LogOptions selects which pods to read. Pods may be plain pod names or
// deployment/<name>.
type LogOptions struct {
	Namespace string
	Pods      []string
	Selector  string
	TailLines int64
	// Events adds the namespace's warning events as one extra log file.
	Events bool
}

// PodLogs returns one LogFile per container, named namespace/pod/container.
func (c *Client) PodLogs(ctx context.Context, opts LogOptions) ([]model.LogFile, error) {
	pods, err := c.resolvePods(ctx, opts)
	if err != nil {
		return nil, err
	}

	var files []model.LogFile
	for _, pod := range pods {
		for _, container := range pod.Spec.Containers {
			content, err := c.containerLogs(ctx, pod.Namespace, pod.Name, container.Name, opts.TailLines)
			if err != nil {
				return nil, fmt.Errorf("failed to get logs for %s/%s: %w", pod.Name, container.Name, err)
			}
			files = append(files, model.LogFile{
				Filename: fmt.Sprintf("%s/%s/%s", pod.Namespace, pod.Name, container.Name),
				Content:  content,
			})
		}
	}

	if opts.Events {
		events, err := c.warningEvents(ctx, opts.Namespace)
		if err == nil && events.Content != "" {
			files = append(files, events)
		}
	}
	return files, nil
}

func (c *Client) resolvePods(ctx context.Context, opts LogOptions) ([]corev1.Pod, error) {
	pods := c.clientset.CoreV1().Pods(opts.Namespace)

	if len(opts.Pods) == 0 {
		if opts.Selector == "" {
			return nil, fmt.Errorf("either pod names or a label selector is required")
		}
		list, err := pods.List(ctx, metav1.ListOptions{LabelSelector: opts.Selector})
		if err != nil {
			return nil, fmt.Errorf("failed to list pods: %w", err)
		}
		return list.Items, nil
	}

	var out []corev1.Pod
	for _, ref := range opts.Pods {
		if name, ok := strings.CutPrefix(ref, "deployment/"); ok {
			list, err := c.podsForDeployment(ctx, opts.Namespace, name)
			if err != nil {
				return nil, err
			}
			out = append(out, list.Items...)
			continue
		}
		pod, err := pods.Get(ctx, ref, metav1.GetOptions{})
		if err != nil {
			return nil, fmt.Errorf("failed to get pod %s: %w", ref, err)
		}
		out = append(out, *pod)
	}
	return out, nil
}

func (c *Client) podsForDeployment(ctx context.Context, namespace, name string) (*corev1.PodList, error) {
	deploy, err := c.clientset.AppsV1().Deployments(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get deployment %s: %w", name, err)
	}
	labelSelector := metav1.LabelSelector{MatchLabels: deploy.Spec.Selector.MatchLabels}
	return c.clientset.CoreV1().Pods(namespace).List(ctx, metav1.ListOptions{
		LabelSelector: metav1.FormatLabelSelector(&labelSelector),
	})
}

func (c *Client) containerLogs(ctx context.Context, namespace, pod, container string, tail int64) (string, error) {
	opts := &corev1.PodLogOptions{Container: container, Timestamps: true}
	if tail > 0 {
		opts.TailLines = &tail
	}
	stream, err := c.clientset.CoreV1().Pods(namespace).GetLogs(pod, opts).Stream(ctx)
	if err != nil {
		return "", err
	}
	defer stream.Close()

	data, err := io.ReadAll(io.LimitReader(stream, maxLogBytes))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// warningEvents renders Warning events as log lines, oldest first.
func (c *Client) warningEvents(ctx context.Context, namespace string) (model.LogFile, error) {
	events, err := c.clientset.CoreV1().Events(namespace).List(ctx, metav1.ListOptions{FieldSelector: "type=Warning"})
	if err != nil {
		return model.LogFile{}, err
	}

	items := events.Items
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].LastTimestamp.Before(&items[j].LastTimestamp)
	})

	var b strings.Builder
	for _, e := range items {
		if e.Type != corev1.EventTypeWarning {
			continue
		}
		fmt.Fprintf(&b, "%s WARNING %s/%s %s: %s\n",
			e.LastTimestamp.UTC().Format("2006-01-02T15:04:05Z"),
			strings.ToLower(e.InvolvedObject.Kind), e.InvolvedObject.Name, e.Reason, e.Message)
	}
	return model.LogFile{Filename: namespace + "/events", Content: b.String()}, nil
}
