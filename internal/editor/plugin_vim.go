package editor

// VimPlugin is the Vim/Neovim plugin source. It runs `glint serve` as a job
// and writes one JSON message per line to its stdin.
const VimPlugin = `" glint editor plugin, auto-generated by 'glint setup', do not edit manually.
" Set g:glint_command to use a glint binary outside $PATH.

if exists('g:loaded_glint') || !(has('nvim') || has('job'))
  finish
endif
let g:loaded_glint = 1

let s:running = 0
let s:job = 0

function! s:start() abort
  let l:argv = [get(g:, 'glint_command', 'glint'), 'serve']
  if has('nvim')
    let s:job = jobstart(l:argv, {'on_exit': function('s:on_exit')})
    let s:running = s:job > 0
  else
    let s:job = job_start(l:argv, {
          \ 'in_mode': 'raw',
          \ 'out_io': 'null',
          \ 'err_io': 'null',
          \ 'exit_cb': function('s:on_exit'),
          \ })
    let s:running = job_status(s:job) ==# 'run'
  endif
endfunction

function! s:on_exit(...) abort
  let s:running = 0
endfunction

function! s:send(msg) abort
  if !s:running
    return
  endif
  let l:line = json_encode(a:msg) . "\n"
  try
    if has('nvim')
      call chansend(s:job, l:line)
    else
      call ch_sendraw(job_getchannel(s:job), l:line)
    endif
  catch
    let s:running = 0
  endtry
endfunction

function! s:state() abort
  let l:path = expand('%:p')
  return {
        \ 'cwd': getcwd(),
        \ 'path': l:path,
        \ 'bufname': bufname('%'),
        \ 'filetype': &filetype,
        \ 'buftype': &buftype,
        \ 'modifiable': &modifiable ? v:true : v:false,
        \ 'lines': line('$'),
        \ 'size': l:path ==# '' ? 0 : getfsize(l:path),
        \ }
endfunction

function! s:update() abort
  call s:send({'type': 'update', 'state': s:state()})
endfunction

function! s:reconnect() abort
  if !s:running
    call s:start()
  endif
  call s:send({'type': 'reconnect'})
endfunction

command! GlintReconnect call s:reconnect()
command! GlintDisconnect call s:send({'type': 'disconnect'})

augroup glint
  autocmd!
  autocmd BufEnter,BufWritePost,CursorHold * call s:update()
  if has('nvim')
    autocmd TermOpen * call s:update()
  elseif exists('##TerminalOpen')
    autocmd TerminalOpen * call s:update()
  endif
  autocmd VimLeavePre * call s:send({'type': 'quit'})
augroup END

call s:start()
`
