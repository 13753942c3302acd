package main

import (
	"fmt"
)

func (a *app) completionCmd(args []string) int {
	fs := a.newFlagSet("completion")
	fs.Usage = func() {
		fmt.Fprintf(a.stderr, "Usage: restclient completion <bash|zsh|fish>\n\n")
		fmt.Fprintf(a.stderr, "Generate shell completion scripts.\n\n")
		fmt.Fprintf(a.stderr, "Examples:\n")
		fmt.Fprintf(a.stderr, "  # Bash\n")
		fmt.Fprintf(a.stderr, "  restclient completion bash > /usr/local/etc/bash_completion.d/restclient\n")
		fmt.Fprintf(a.stderr, "  # Zsh\n")
		fmt.Fprintf(a.stderr, "  restclient completion zsh > \"${fpath[1]}/_restclient\"\n")
		fmt.Fprintf(a.stderr, "  # Fish\n")
		fmt.Fprintf(a.stderr, "  restclient completion fish > ~/.config/fish/completions/restclient.fish\n")
	}
	if code, ok := parse(fs, args); !ok {
		return code
	}
	if fs.NArg() < 1 {
		return a.usageError(fs, "shell name is required (bash, zsh, or fish)")
	}

	switch shell := fs.Arg(0); shell {
	case "bash":
		fmt.Fprint(a.stdout, generateBashCompletion())
	case "zsh":
		fmt.Fprint(a.stdout, generateZshCompletion())
	case "fish":
		fmt.Fprint(a.stdout, generateFishCompletion())
	default:
		return a.usageError(fs, "unsupported shell %q (use bash, zsh, or fish)", shell)
	}
	return exitOK
}

func generateBashCompletion() string {
	return `# bash completion for restclient                         -*- shell-script -*-

_restclient() {
    local cur prev words cword
    _init_completion || return

    local commands="send history browse products transactions mock completion version help"

    local send_flags="-X --method -H -d --data --curl --no-history --raw --json --fail"
    local history_subcommands="list show rm clear export"
    local resource_subcommands="list get create update delete"
    local product_flags="--name --category --price --stock --description --image --json"
    local transaction_flags="--product --qty --total --json"
    local mock_flags="--port --latency --error-rate --cors-origin --envelope --seed"

    local methods="GET POST PUT PATCH DELETE"
    local export_formats="har curl json"
    local envelopes="bare data result"
    local shells="bash zsh fish"

    if [[ ${cword} -eq 1 ]]; then
        COMPREPLY=($(compgen -W "${commands}" -- "${cur}"))
        return
    fi

    local command="${words[1]}"

    # Complete flag values
    case "${prev}" in
        -X|--method)
            COMPREPLY=($(compgen -W "${methods}" -- "${cur}"))
            return
            ;;
        --format)
            COMPREPLY=($(compgen -W "${export_formats}" -- "${cur}"))
            return
            ;;
        --envelope)
            COMPREPLY=($(compgen -W "${envelopes}" -- "${cur}"))
            return
            ;;
        --output|--image|--seed)
            _filedir
            return
            ;;
        -H|-d|--data|--curl|--name|--category|--price|--stock|--description|--product|--qty|--total|--port|--latency|--error-rate|--cors-origin|--search)
            # These take user-provided values, no completion
            return
            ;;
    esac

    case "${command}" in
        send)
            if [[ "${cur}" == -* ]]; then
                COMPREPLY=($(compgen -W "${send_flags}" -- "${cur}"))
            fi
            ;;
        history)
            if [[ ${cword} -eq 2 ]]; then
                COMPREPLY=($(compgen -W "${history_subcommands}" -- "${cur}"))
            elif [[ "${cur}" == -* ]]; then
                COMPREPLY=($(compgen -W "--search --json --yes --format --output" -- "${cur}"))
            fi
            ;;
        products)
            if [[ ${cword} -eq 2 ]]; then
                COMPREPLY=($(compgen -W "${resource_subcommands}" -- "${cur}"))
            elif [[ "${cur}" == -* ]]; then
                COMPREPLY=($(compgen -W "${product_flags}" -- "${cur}"))
            fi
            ;;
        transactions)
            if [[ ${cword} -eq 2 ]]; then
                COMPREPLY=($(compgen -W "${resource_subcommands}" -- "${cur}"))
            elif [[ "${cur}" == -* ]]; then
                COMPREPLY=($(compgen -W "${transaction_flags}" -- "${cur}"))
            fi
            ;;
        mock)
            if [[ "${cur}" == -* ]]; then
                COMPREPLY=($(compgen -W "${mock_flags}" -- "${cur}"))
            fi
            ;;
        completion)
            COMPREPLY=($(compgen -W "${shells}" -- "${cur}"))
            ;;
    esac
}

complete -F _restclient restclient
`
}

func generateZshCompletion() string {
	return `#compdef restclient

# zsh completion for restclient

_restclient() {
    local -a commands
    commands=(
        'send:Send an HTTP request and record it in history'
        'history:List, show, remove, clear or export recorded requests'
        'browse:Browse request history interactively'
        'products:Manage products through the products API'
        'transactions:Manage transactions through the transactions API'
        'mock:Start a local products/transactions backend'
        'completion:Generate shell completion scripts'
        'version:Print version information'
        'help:Show help message'
    )

    _arguments -C \
        '1:command:->command' \
        '*::arg:->args'

    case $state in
        command)
            _describe -t commands 'restclient commands' commands
            ;;
        args)
            case $words[1] in
                send)
                    _arguments \
                        '-X[HTTP method]:method:(GET POST PUT PATCH DELETE)' \
                        '--method[HTTP method]:method:(GET POST PUT PATCH DELETE)' \
                        '*-H[Request header]:header:' \
                        '-d[Request body]:body:' \
                        '--data[Request body]:body:' \
                        '--curl[Build the request from a curl command line]:curl command:' \
                        '--no-history[Do not record the request in history]' \
                        '--raw[Send the body without JSON validation]' \
                        '--json[Print the request and response as JSON]' \
                        '--fail[Exit with status 1 on HTTP errors]' \
                        '1:url:_urls'
                    ;;
                history)
                    _arguments \
                        '1:subcommand:(list show rm clear export)' \
                        '--search[Fuzzy filter]:query:' \
                        '--json[Print as JSON]' \
                        '--yes[Do not ask for confirmation]' \
                        '--format[Export format]:format:(har curl json)' \
                        '--output[Output file path]:output file:_files'
                    ;;
                products)
                    _arguments \
                        '1:subcommand:(list get create update delete)' \
                        '--name[Product name]:name:' \
                        '--category[Category]:category:' \
                        '--price[Price]:price:' \
                        '--stock[Stock]:stock:' \
                        '--description[Description]:description:' \
                        '--image[Image file]:image file:_files' \
                        '--json[Print as JSON]'
                    ;;
                transactions)
                    _arguments \
                        '1:subcommand:(list get create update delete)' \
                        '--product[Product id]:product id:' \
                        '--qty[Quantity]:qty:' \
                        '--total[Total price]:total:' \
                        '--json[Print as JSON]'
                    ;;
                mock)
                    _arguments \
                        '--port[Port to listen on]:port:' \
                        '--latency[Artificial response latency]:latency:' \
                        '--error-rate[Random error rate]:rate:' \
                        '--cors-origin[Access-Control-Allow-Origin value]:origin:' \
                        '--envelope[List envelope]:envelope:(bare data result)' \
                        '--seed[Seed YAML file]:seed file:_files -g "*.yaml"'
                    ;;
                completion)
                    _arguments \
                        '1:shell:(bash zsh fish)'
                    ;;
            esac
            ;;
    esac
}

_restclient "$@"
`
}

func generateFishCompletion() string {
	return `# fish completion for restclient

# Disable file completions by default
complete -c restclient -f

# Subcommands
complete -c restclient -n '__fish_use_subcommand' -a send -d 'Send an HTTP request and record it in history'
complete -c restclient -n '__fish_use_subcommand' -a history -d 'List, show, remove, clear or export recorded requests'
complete -c restclient -n '__fish_use_subcommand' -a browse -d 'Browse request history interactively'
complete -c restclient -n '__fish_use_subcommand' -a products -d 'Manage products through the products API'
complete -c restclient -n '__fish_use_subcommand' -a transactions -d 'Manage transactions through the transactions API'
complete -c restclient -n '__fish_use_subcommand' -a mock -d 'Start a local products/transactions backend'
complete -c restclient -n '__fish_use_subcommand' -a completion -d 'Generate shell completion scripts'
complete -c restclient -n '__fish_use_subcommand' -a version -d 'Print version information'
complete -c restclient -n '__fish_use_subcommand' -a help -d 'Show help message'

# send flags
complete -c restclient -n '__fish_seen_subcommand_from send' -s X -l method -d 'HTTP method' -ra 'GET POST PUT PATCH DELETE'
complete -c restclient -n '__fish_seen_subcommand_from send' -s H -d 'Request header' -r
complete -c restclient -n '__fish_seen_subcommand_from send' -s d -l data -d 'Request body' -r
complete -c restclient -n '__fish_seen_subcommand_from send' -l curl -d 'Build the request from a curl command line' -r
complete -c restclient -n '__fish_seen_subcommand_from send' -l no-history -d 'Do not record the request in history'
complete -c restclient -n '__fish_seen_subcommand_from send' -l raw -d 'Send the body without JSON validation'
complete -c restclient -n '__fish_seen_subcommand_from send' -l json -d 'Print the request and response as JSON'
complete -c restclient -n '__fish_seen_subcommand_from send' -l fail -d 'Exit with status 1 on HTTP errors'

# history
complete -c restclient -n '__fish_seen_subcommand_from history' -a 'list show rm clear export'
complete -c restclient -n '__fish_seen_subcommand_from history' -l search -d 'Fuzzy filter' -r
complete -c restclient -n '__fish_seen_subcommand_from history' -l yes -d 'Do not ask for confirmation'
complete -c restclient -n '__fish_seen_subcommand_from history' -l format -d 'Export format' -ra 'har curl json'
complete -c restclient -n '__fish_seen_subcommand_from history' -l output -d 'Output file path' -rF

# products
complete -c restclient -n '__fish_seen_subcommand_from products' -a 'list get create update delete'
complete -c restclient -n '__fish_seen_subcommand_from products' -l name -d 'Product name' -r
complete -c restclient -n '__fish_seen_subcommand_from products' -l category -d 'Category' -r
complete -c restclient -n '__fish_seen_subcommand_from products' -l price -d 'Price' -r
complete -c restclient -n '__fish_seen_subcommand_from products' -l stock -d 'Stock' -r
complete -c restclient -n '__fish_seen_subcommand_from products' -l description -d 'Description' -r
complete -c restclient -n '__fish_seen_subcommand_from products' -l image -d 'Image file' -rF

# transactions
complete -c restclient -n '__fish_seen_subcommand_from transactions' -a 'list get create update delete'
complete -c restclient -n '__fish_seen_subcommand_from transactions' -l product -d 'Product id' -r
complete -c restclient -n '__fish_seen_subcommand_from transactions' -l qty -d 'Quantity' -r
complete -c restclient -n '__fish_seen_subcommand_from transactions' -l total -d 'Total price' -r

# mock flags
complete -c restclient -n '__fish_seen_subcommand_from mock' -l port -d 'Port to listen on' -r
complete -c restclient -n '__fish_seen_subcommand_from mock' -l latency -d 'Artificial response latency' -r
complete -c restclient -n '__fish_seen_subcommand_from mock' -l error-rate -d 'Random error rate' -r
complete -c restclient -n '__fish_seen_subcommand_from mock' -l cors-origin -d 'Access-Control-Allow-Origin value' -r
complete -c restclient -n '__fish_seen_subcommand_from mock' -l envelope -d 'List envelope' -ra 'bare data result'
complete -c restclient -n '__fish_seen_subcommand_from mock' -l seed -d 'Seed YAML file' -rF

# completion - shell names
complete -c restclient -n '__fish_seen_subcommand_from completion' -a 'bash zsh fish' -d 'Shell type'
`
}
