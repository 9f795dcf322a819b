package cmd

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/duration"
	"k8s.io/apimachinery/pkg/version"

	"kubewire/internal/color"
	"kubewire/internal/kubeapi"
)

// For mocking in tests
var timeNow = time.Now

func newGetCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Read common resources from the Kubernetes API server",
	}

	cmd.AddCommand(newGetPodsCmd(opts))
	cmd.AddCommand(newGetNamespacesCmd(opts))
	cmd.AddCommand(newGetVersionCmd(opts))
	return cmd
}

func newGetPodsCmd(opts *rootOptions) *cobra.Command {
	var (
		namespace     string
		allNamespaces bool
		selector      string
		fieldSelector string
		limit         int64
	)

	cmd := &cobra.Command{
		Use:     "pods",
		Aliases: []string{"pod", "po"},
		Short:   "List pods",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, conn, err := opts.kubeClient()
			if err != nil {
				return err
			}

			ns := namespace
			if allNamespaces {
				ns = ""
			} else if ns == "" {
				ns = conn.Namespace
				if ns == "" {
					ns = metav1.NamespaceDefault
				}
			}

			req, err := kubeapi.ListPods(ns, metav1.ListOptions{
				LabelSelector: selector,
				FieldSelector: fieldSelector,
				Limit:         limit,
			})
			if err != nil {
				return err
			}

			pods := &corev1.PodList{}
			if err := client.DoInto(cmd.Context(), req, pods); err != nil {
				return err
			}
			renderPods(cmd.OutOrStdout(), pods, allNamespaces)
			return nil
		},
	}

	cmd.Flags().StringVarP(&namespace, "namespace", "n", "", "Namespace (default: the context's namespace)")
	cmd.Flags().BoolVarP(&allNamespaces, "all-namespaces", "A", false, "List pods in all namespaces")
	cmd.Flags().StringVarP(&selector, "selector", "l", "", "Label selector")
	cmd.Flags().StringVar(&fieldSelector, "field-selector", "", "Field selector")
	cmd.Flags().Int64Var(&limit, "limit", 0, "Maximum number of pods to return")
	return cmd
}

func newGetNamespacesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "namespaces [NAME]",
		Aliases: []string{"namespace", "ns"},
		Short:   "List namespaces, or show one",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := opts.kubeClient()
			if err != nil {
				return err
			}

			if len(args) == 1 {
				req, err := kubeapi.GetNamespace(args[0])
				if err != nil {
					return err
				}
				ns := &corev1.Namespace{}
				if err := client.DoInto(cmd.Context(), req, ns); err != nil {
					return err
				}
				renderNamespaces(cmd.OutOrStdout(), []corev1.Namespace{*ns})
				return nil
			}

			req, err := kubeapi.ListNamespaces(metav1.ListOptions{})
			if err != nil {
				return err
			}
			list := &corev1.NamespaceList{}
			if err := client.DoInto(cmd.Context(), req, list); err != nil {
				return err
			}
			renderNamespaces(cmd.OutOrStdout(), list.Items)
			return nil
		},
	}
}

func newGetVersionCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the API server version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, conn, err := opts.kubeClient()
			if err != nil {
				return err
			}
			req, err := kubeapi.GetVersion()
			if err != nil {
				return err
			}
			info := &version.Info{}
			if err := client.DoInto(cmd.Context(), req, info); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s\n", color.LabelStyle.Render("Server"), conn.Server.URL)
			fmt.Fprintf(out, "%s %s\n", color.LabelStyle.Render("Version"), color.SuccessStyle.Render(info.GitVersion))
			if info.Platform != "" {
				fmt.Fprintf(out, "%s %s\n", color.LabelStyle.Render("Platform"), info.Platform)
			}
			return nil
		},
	}
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.HiddenBorder()).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return color.TitleStyle.PaddingRight(2)
			}
			return lipgloss.NewStyle().PaddingRight(2)
		})
}

func renderPods(w io.Writer, pods *corev1.PodList, withNamespace bool) {
	if len(pods.Items) == 0 {
		fmt.Fprintln(w, color.MutedStyle.Render("No pods found."))
		return
	}

	headers := []string{"NAME", "READY", "STATUS", "RESTARTS", "AGE"}
	if withNamespace {
		headers = append([]string{"NAMESPACE"}, headers...)
	}
	t := newTable(headers...)

	for _, pod := range pods.Items {
		ready, restarts := 0, int32(0)
		for _, cs := range pod.Status.ContainerStatuses {
			if cs.Ready {
				ready++
			}
			restarts += cs.RestartCount
		}

		row := []string{
			pod.Name,
			fmt.Sprintf("%d/%d", ready, len(pod.Spec.Containers)),
			podStatus(&pod),
			strconv.Itoa(int(restarts)),
			age(pod.CreationTimestamp),
		}
		if withNamespace {
			row = append([]string{pod.Namespace}, row...)
		}
		t.Row(row...)
	}
	fmt.Fprintln(w, t.String())
}

func renderNamespaces(w io.Writer, namespaces []corev1.Namespace) {
	if len(namespaces) == 0 {
		fmt.Fprintln(w, color.MutedStyle.Render("No namespaces found."))
		return
	}

	t := newTable("NAME", "STATUS", "AGE")
	for _, ns := range namespaces {
		t.Row(ns.Name, string(ns.Status.Phase), age(ns.CreationTimestamp))
	}
	fmt.Fprintln(w, t.String())
}

// podStatus mirrors the short status kubectl shows: a waiting or terminated
// container reason wins over the pod phase.
func podStatus(pod *corev1.Pod) string {
	if pod.DeletionTimestamp != nil {
		return "Terminating"
	}
	for _, cs := range pod.Status.ContainerStatuses {
		if cs.State.Waiting != nil && cs.State.Waiting.Reason != "" {
			return cs.State.Waiting.Reason
		}
		if cs.State.Terminated != nil && cs.State.Terminated.Reason != "" {
			return cs.State.Terminated.Reason
		}
	}
	if pod.Status.Reason != "" {
		return pod.Status.Reason
	}
	if pod.Status.Phase == "" {
		return "Unknown"
	}
	return string(pod.Status.Phase)
}

func age(created metav1.Time) string {
	if created.IsZero() {
		return "<unknown>"
	}
	return duration.HumanDuration(timeNow().Sub(created.Time))
}
