package source

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudportal/backend-go/internal/domain"
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

const regionLabel = "topology.kubernetes.io/region"

// KubernetesSource lists the workloads of one namespace as inventory
type KubernetesSource struct {
	clientset kubernetes.Interface
	namespace string
}

// NewKubernetesSource connects with in-cluster or kubeconfig auth
func NewKubernetesSource(kubeconfig, namespace string) (*KubernetesSource, error) {
	var cfg *rest.Config
	var err error

	if kubeconfig != "" {
		cfg, err = clientcmd.BuildConfigFromFlags("", kubeconfig)
	} else {
		cfg, err = rest.InClusterConfig()
		if err != nil {
			// Fallback to default kubeconfig
			cfg, err = clientcmd.BuildConfigFromFlags("", clientcmd.RecommendedHomeFile)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("k8s config: %w", err)
	}

	cs, err := kubernetes.NewForConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("k8s clientset: %w", err)
	}
	return NewKubernetesSourceFromClientset(cs, namespace), nil
}

// NewKubernetesSourceFromClientset wraps an existing clientset
func NewKubernetesSourceFromClientset(cs kubernetes.Interface, namespace string) *KubernetesSource {
	if namespace == "" {
		namespace = "default"
	}
	return &KubernetesSource{clientset: cs, namespace: namespace}
}

// Name identifies the source in logs and metrics
func (s *KubernetesSource) Name() string { return "k8s" }

// Fetch maps Deployments to compute resources and Services to network
// resources. A resource's location is its region label, or the namespace
// when the label is missing.
func (s *KubernetesSource) Fetch(ctx context.Context, customer, provider string) (*domain.Snapshot, error) {
	if provider == "" {
		provider = "Kubernetes"
	}
	snap := &domain.Snapshot{
		CustomerName: customer,
		Provider:     provider,
		Resources:    make([]domain.Resource, 0),
	}

	deployments, err := s.clientset.AppsV1().Deployments(s.namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("list deployments: %w", err)
	}
	for _, dep := range deployments.Items {
		snap.Resources = append(snap.Resources, s.deploymentToResource(dep))
	}

	services, err := s.clientset.CoreV1().Services(s.namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	for _, svc := range services.Items {
		snap.Resources = append(snap.Resources, s.serviceToResource(svc))
	}

	return snap, nil
}

func (s *KubernetesSource) deploymentToResource(dep appsv1.Deployment) domain.Resource {
	replicas := int32(1)
	if dep.Spec.Replicas != nil {
		replicas = *dep.Spec.Replicas
	}

	status := domain.StatusProvisioning
	switch {
	case replicas == 0:
		status = domain.StatusInactive
	case dep.Status.ReadyReplicas == replicas:
		status = domain.StatusActive
	}

	images := make([]string, 0, len(dep.Spec.Template.Spec.Containers))
	for _, c := range dep.Spec.Template.Spec.Containers {
		images = append(images, c.Image)
	}

	return domain.Resource{
		ID:       "deploy/" + dep.Namespace + "/" + dep.Name,
		Name:     dep.Name,
		Type:     "Deployment",
		Category: domain.CategoryCompute,
		Location: s.location(dep.Labels),
		Status:   status,
		Specs: domain.NewSpecs(
			domain.Field("replicas", domain.Number(float64(replicas))),
			domain.Field("ready_replicas", domain.Number(float64(dep.Status.ReadyReplicas))),
			domain.Field("image", domain.Text(strings.Join(images, ","))),
		),
	}
}

func (s *KubernetesSource) serviceToResource(svc corev1.Service) domain.Resource {
	return domain.Resource{
		ID:       "svc/" + svc.Namespace + "/" + svc.Name,
		Name:     svc.Name,
		Type:     "Service",
		Category: domain.CategoryNetwork,
		Location: s.location(svc.Labels),
		Status:   domain.StatusActive,
		Specs: domain.NewSpecs(
			domain.Field("service_type", domain.Text(string(svc.Spec.Type))),
			domain.Field("ports", domain.Number(float64(len(svc.Spec.Ports)))),
			domain.Field("cluster_ip", domain.Text(svc.Spec.ClusterIP)),
		),
	}
}

func (s *KubernetesSource) location(labels map[string]string) string {
	if region := labels[regionLabel]; region != "" {
		return region
	}
	return s.namespace
}
